package social

import "net/http"

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" /register", h.handleRegisterPage)
	mux.HandleFunc(http.MethodPost+" /register", h.handleRegister)
	mux.HandleFunc(http.MethodGet+" /login", h.handleLoginPage)
	mux.HandleFunc(http.MethodPost+" /login", h.handleLogin)
	mux.HandleFunc(http.MethodPost+" /logout", h.handleLogout)
	mux.HandleFunc(http.MethodGet+" /account", h.handleAccount)
	mux.HandleFunc(http.MethodPost+" /account/password", h.handlePasswordChange)
	mux.HandleFunc(http.MethodPost+" /account/delete", h.handleAccountDelete)
	mux.HandleFunc(http.MethodPost+" /profile", h.handleProfileUpdate)
	mux.HandleFunc(http.MethodGet+" /profile/{username}", h.handlePublicProfile)
	mux.HandleFunc(http.MethodGet+" /users/search", h.handleUserSearch)
	mux.HandleFunc(http.MethodGet+" /friends", h.handleFriends)
	mux.HandleFunc(http.MethodPost+" /friends/send/{id}", h.handleFriendSend)
	mux.HandleFunc(http.MethodPost+" /friends/accept/{id}", h.handleFriendAccept)
}
