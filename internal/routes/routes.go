package routes

import (
	"net/http"

	"stockroom/internal/handlers"
	"stockroom/internal/middleware"

	"github.com/gorilla/mux"
)

func InitRoutes(
	router *mux.Router,
	auth func(http.Handler) http.Handler,
	env string,
	userHandler *handlers.UserHandler,
	productHandler *handlers.ProductHandler,
	contactHandler *handlers.ContactHandler,
) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)
	router.Use(middleware.Recoverer(env))

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	// --- Public user routes ---
	users := router.PathPrefix("/users").Subrouter()
	users.HandleFunc("/register", userHandler.Register).Methods(http.MethodPost)
	users.HandleFunc("/login", userHandler.Login).Methods(http.MethodPost)
	users.HandleFunc("/logout", userHandler.Logout).Methods(http.MethodGet)
	users.HandleFunc("/loggedin", userHandler.LoginStatus).Methods(http.MethodGet)
	users.HandleFunc("/forgotpassword", userHandler.ForgotPassword).Methods(http.MethodPost)
	users.HandleFunc("/resetpassword/{resetToken}", userHandler.ResetPassword).Methods(http.MethodPatch)

	// --- Protected user routes ---
	usersAuth := users.PathPrefix("").Subrouter()
	usersAuth.Use(auth)
	usersAuth.HandleFunc("", userHandler.GetUsers).Methods(http.MethodGet)
	usersAuth.HandleFunc("/getuser", userHandler.GetUser).Methods(http.MethodGet)
	usersAuth.HandleFunc("/updateuser", userHandler.UpdateUser).Methods(http.MethodPatch)
	usersAuth.HandleFunc("/changepassword", userHandler.ChangePassword).Methods(http.MethodPatch)

	// --- Products (all protected) ---
	products := router.PathPrefix("/products").Subrouter()
	products.Use(auth)
	products.HandleFunc("", productHandler.Create).Methods(http.MethodPost)
	products.HandleFunc("", productHandler.List).Methods(http.MethodGet)
	products.HandleFunc("/{id:[0-9]+}", productHandler.Get).Methods(http.MethodGet)
	products.HandleFunc("/{id:[0-9]+}", productHandler.Update).Methods(http.MethodPatch)
	products.HandleFunc("/{id:[0-9]+}", productHandler.Delete).Methods(http.MethodDelete)

	// --- Contact ---
	contact := router.PathPrefix("/contact-us").Subrouter()
	contact.Use(auth)
	contact.HandleFunc("", contactHandler.ContactUs).Methods(http.MethodPost)
}
