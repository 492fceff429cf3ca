package web

import "net/http"

// registerRoutes wires every application endpoint onto the mux. Method
// dispatch happens inside the handlers, matching how the forms submit.
func registerRoutes(mux *http.ServeMux) {
	// Video catalogue
	mux.HandleFunc("/videos", handleVideos)
	mux.HandleFunc("/videos/upload", handleUploadVideo)
	mux.HandleFunc("/videos/", handleVideoByTitle)

	// Tag index
	mux.HandleFunc("/tags", handleTags)

	// Mutations addressed by video id
	mux.HandleFunc("/editVideo", handleEditVideo)
	mux.HandleFunc("/deleteVideo", handleDeleteVideo)

	// Account and session
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/register", handleRegister)
	mux.HandleFunc("/logout", handleLogout)
}
