package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"videohost/internal/adapters/email"
	"videohost/internal/adapters/http/middleware"
	videoStore "videohost/internal/adapters/storage/video"
	"videohost/internal/application/orchestrators"
	videoDomain "videohost/internal/domain/video"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// templatesDir is resolved relative to the working directory. Tests override
// it because they run from the package directory.
var templatesDir = "internal/adapters/http/templates"

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderTemplateStatus(w, r, templateName, data, http.StatusOK)
}

func renderTemplateStatus(w http.ResponseWriter, r *http.Request, templateName string, data any, status int) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	email := ""
	if ok {
		email = sess.Email
	}

	funcMap := template.FuncMap{
		"currentEmail": func() string { return email },
		"isLoggedIn":   func() bool { return email != "" },
		"csrfToken":    func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"formatDate": func(t time.Time) string {
			return t.Format("2 Jan 2006 15:04")
		},
		"tagNames": func(tags []videoDomain.Tag) string {
			return orchestrators.TagsToString(tags)
		},
		"pathEscape": func(s string) string {
			return url.PathEscape(s)
		},
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tpl.Execute(w, data); err != nil {
		slog.Error("template_render", "template", templateName, "error", err.Error())
		return
	}
}

// maxUploadBytes caps the whole multipart request body: the content limit plus
// headroom for multipart framing and the other form fields. A var so tests can
// shrink it.
var maxUploadBytes int64 = videoDomain.MaxContentBytes + (16 << 20)

// multipartMemory is the in-memory threshold for multipart parsing; larger
// parts spill to disk.
const multipartMemory = 32 << 20

// parseUploadForm parses a size-capped multipart form. The boolean reports
// whether the body blew the cap, which is a client error, not a server one.
func parseUploadForm(w http.ResponseWriter, r *http.Request) (tooLarge bool, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return true, err
		}
		return false, err
	}
	return false, nil
}

// readUploadedFile pulls the raw bytes of the optional VideoFile field.
// An absent or empty file yields a nil slice, never an error.
func readUploadedFile(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("VideoFile")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()
	// Read at most one byte past the content cap; EncodeContent rejects the
	// overflow without this ever buffering an unbounded payload.
	data, err := io.ReadAll(io.LimitReader(file, videoDomain.MaxContentBytes+1))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// videoRow is the view model for one entry on the listing page.
type videoRow struct {
	ID          string
	Title       string
	Description string
	OwnerEmail  string
	UploadedAt  time.Time
	Tags        []videoDomain.Tag
}

// handleVideos handles GET /videos: the full catalogue, newest first.
func handleVideos(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	videos, err := stores.VideoStore.ListAll(ctx)
	if err != nil {
		internalError(w, err)
		return
	}

	rows := make([]videoRow, 0, len(videos))
	for _, v := range videos {
		tags, err := stores.VideoStore.GetTags(ctx, v.ID)
		if err != nil {
			internalError(w, err)
			return
		}
		rows = append(rows, videoRow{
			ID:          v.ID,
			Title:       v.Title,
			Description: v.Description,
			OwnerEmail:  v.OwnerEmail,
			UploadedAt:  v.UploadedAt,
			Tags:        tags,
		})
	}

	renderTemplate(w, r, "videos.html", map[string]any{
		"Videos": rows,
	})
}

// handleVideoByTitle handles GET /videos/{title}: the detail page with the
// playable content. Unknown titles render a dedicated 404 page.
func handleVideoByTitle(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/videos/")
	title, err := url.PathUnescape(raw)
	if err != nil || title == "" {
		http.Redirect(w, r, "/videos", http.StatusSeeOther)
		return
	}

	ctx := r.Context()
	v, err := stores.VideoStore.GetByTitle(ctx, title)
	if errors.Is(err, videoStore.ErrNotFound) {
		renderTemplateStatus(w, r, "video_not_found.html", map[string]any{
			"Title": title,
		}, http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	tags, err := stores.VideoStore.GetTags(ctx, v.ID)
	if err != nil {
		internalError(w, err)
		return
	}

	session, _ := middleware.GetSessionFromContext(ctx)
	renderTemplate(w, r, "video_detail.html", map[string]any{
		"Video":   v,
		"Tags":    tags,
		"IsOwner": session.AccountID != "" && session.AccountID == v.OwnerID,
	})
}

// handleTags handles GET /tags: every tag in use, alphabetical.
func handleTags(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	tags, err := stores.TagStore.ListAll(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "tags.html", map[string]any{
		"Tags": tags,
	})
}

// handleUploadVideo handles GET (form) and POST (create) for /videos/upload.
func handleUploadVideo(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == "GET" {
		renderTemplate(w, r, "video_upload.html", map[string]any{
			"CSRFToken":   csrf.Token(r),
			"Error":       "",
			"Title":       "",
			"Description": "",
			"Tags":        "",
		})
		return
	}

	if r.Method == "POST" {
		if tooLarge, err := parseUploadForm(w, r); err != nil {
			if tooLarge {
				http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		content, err := readUploadedFile(r)
		if err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.UploadVideoInput{
			Title:       r.FormValue("Title"),
			Description: r.FormValue("Description"),
			TagText:     r.FormValue("Tags"),
			Content:     content,
			OwnerID:     session.AccountID,
		}
		deps := orchestrators.UploadVideoDeps{
			VideoStore: stores.VideoStore,
			TagStore:   stores.TagStore,
			GenerateID: generateID,
			Now:        timeNow,
		}

		if _, err := orchestrators.ExecuteUploadVideo(r.Context(), input, deps); err != nil {
			if errors.Is(err, videoStore.ErrDuplicateTitle) ||
				errors.Is(err, videoDomain.ErrEmptyTitle) ||
				errors.Is(err, videoDomain.ErrTitleTooLong) ||
				errors.Is(err, videoDomain.ErrDescriptionTooLong) ||
				errors.Is(err, videoDomain.ErrContentTooLarge) {
				renderTemplateStatus(w, r, "video_upload.html", map[string]any{
					"CSRFToken":   csrf.Token(r),
					"Error":       err.Error(),
					"Title":       input.Title,
					"Description": input.Description,
					"Tags":        input.TagText,
				}, http.StatusBadRequest)
				return
			}
			internalError(w, err)
			return
		}

		http.Redirect(w, r, "/videos", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleEditVideo handles GET (form, ?videoId=) and PUT/POST (update) for /editVideo.
func handleEditVideo(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	ctx := r.Context()

	if r.Method == "GET" {
		videoID := r.URL.Query().Get("videoId")
		if videoID == "" {
			http.Error(w, "missing videoId", http.StatusBadRequest)
			return
		}

		v, err := stores.VideoStore.GetByID(ctx, videoID)
		if errors.Is(err, videoStore.ErrNotFound) {
			renderTemplateStatus(w, r, "video_not_found.html", map[string]any{
				"Title": "",
			}, http.StatusNotFound)
			return
		}
		if err != nil {
			internalError(w, err)
			return
		}
		if v.OwnerID != session.AccountID {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		tags, err := stores.VideoStore.GetTags(ctx, v.ID)
		if err != nil {
			internalError(w, err)
			return
		}

		renderTemplate(w, r, "video_edit.html", map[string]any{
			"CSRFToken":   csrf.Token(r),
			"Error":       "",
			"VideoID":     v.ID,
			"Title":       v.Title,
			"Description": v.Description,
			"Tags":        orchestrators.TagsToString(tags),
		})
		return
	}

	// Browsers cannot submit multipart PUT from a plain form, so the edit
	// form POSTs to the same path.
	if r.Method == "PUT" || r.Method == "POST" {
		if tooLarge, err := parseUploadForm(w, r); err != nil {
			if tooLarge {
				http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		content, err := readUploadedFile(r)
		if err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.EditVideoInput{
			VideoID:     r.FormValue("VideoID"),
			Title:       r.FormValue("Title"),
			Description: r.FormValue("Description"),
			TagText:     r.FormValue("Tags"),
			Content:     content,
			EditorID:    session.AccountID,
		}
		deps := orchestrators.EditVideoDeps{
			VideoStore: stores.VideoStore,
			TagStore:   stores.TagStore,
			GenerateID: generateID,
			Now:        timeNow,
		}

		v, err := orchestrators.ExecuteEditVideo(ctx, input, deps)
		if err != nil {
			switch {
			case errors.Is(err, videoStore.ErrNotFound):
				renderTemplateStatus(w, r, "video_not_found.html", map[string]any{
					"Title": input.Title,
				}, http.StatusNotFound)
			case errors.Is(err, orchestrators.ErrNotOwner):
				http.Error(w, "Forbidden", http.StatusForbidden)
			case errors.Is(err, videoStore.ErrDuplicateTitle),
				errors.Is(err, videoDomain.ErrEmptyTitle),
				errors.Is(err, videoDomain.ErrTitleTooLong),
				errors.Is(err, videoDomain.ErrDescriptionTooLong),
				errors.Is(err, videoDomain.ErrContentTooLarge):
				renderTemplateStatus(w, r, "video_edit.html", map[string]any{
					"CSRFToken":   csrf.Token(r),
					"Error":       err.Error(),
					"VideoID":     input.VideoID,
					"Title":       input.Title,
					"Description": input.Description,
					"Tags":        input.TagText,
				}, http.StatusBadRequest)
			default:
				internalError(w, err)
			}
			return
		}

		http.Redirect(w, r, "/videos/"+url.PathEscape(v.Title), http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleDeleteVideo handles DELETE/POST /deleteVideo.
func handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != "DELETE" && r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	videoID := r.FormValue("VideoID")
	if videoID == "" {
		videoID = r.URL.Query().Get("videoId")
	}
	if videoID == "" {
		http.Error(w, "missing videoId", http.StatusBadRequest)
		return
	}

	input := orchestrators.DeleteVideoInput{
		VideoID:  videoID,
		EditorID: session.AccountID,
	}
	deps := orchestrators.DeleteVideoDeps{VideoStore: stores.VideoStore}

	if err := orchestrators.ExecuteDeleteVideo(r.Context(), input, deps); err != nil {
		switch {
		case errors.Is(err, videoStore.ErrNotFound):
			renderTemplateStatus(w, r, "video_not_found.html", map[string]any{
				"Title": "",
			}, http.StatusNotFound)
		case errors.Is(err, orchestrators.ErrNotOwner):
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			internalError(w, err)
		}
		return
	}

	http.Redirect(w, r, "/videos", http.StatusSeeOther)
}

// handleLogin handles GET (form) and POST (authenticate) for /login.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		// If already logged in, go straight to the catalogue
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/videos", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
			"Error":     "",
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.LoginInput{
			Email:    r.FormValue("Email"),
			Password: r.FormValue("Password"),
		}
		deps := orchestrators.LoginDeps{
			AccountStore: stores.AccountStore,
		}

		result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
		if err != nil {
			renderTemplateStatus(w, r, "login.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			}, http.StatusUnauthorized)
			return
		}

		token, err := sessions.Create(result.AccountID, result.Email)
		if err != nil {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}

		middleware.SetSessionCookie(w, token)
		http.Redirect(w, r, "/videos", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleRegister handles GET (form) and POST (create account) for /register.
func handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/videos", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "register.html", map[string]any{
			"CSRFToken": csrf.Token(r),
			"Error":     "",
			"Email":     "",
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		if r.FormValue("Password") != r.FormValue("ConfirmPassword") {
			renderTemplateStatus(w, r, "register.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     "Passwords do not match",
				"Email":     r.FormValue("Email"),
			}, http.StatusBadRequest)
			return
		}

		input := orchestrators.RegisterAccountInput{
			Email:    r.FormValue("Email"),
			Password: r.FormValue("Password"),
		}
		deps := orchestrators.RegisterAccountDeps{
			AccountStore: stores.AccountStore,
			GenerateID:   generateID,
			Now:          timeNow,
		}

		acct, err := orchestrators.ExecuteRegisterAccount(r.Context(), input, deps)
		if err != nil {
			renderTemplateStatus(w, r, "register.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
				"Email":     input.Email,
			}, http.StatusBadRequest)
			return
		}

		sendWelcomeEmail(r, acct.Email)

		token, err := sessions.Create(acct.ID, acct.Email)
		if err != nil {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}

		middleware.SetSessionCookie(w, token)
		http.Redirect(w, r, "/videos", http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// sendWelcomeEmail fires a best-effort welcome message. Failures are logged,
// never surfaced: registration already succeeded.
func sendWelcomeEmail(r *http.Request, to string) {
	if emailSender == nil {
		return
	}
	_, err := emailSender.Send(r.Context(), email.SendRequest{
		From:    emailFromAddress,
		To:      []string{to},
		ReplyTo: emailReplyTo,
		Subject: "Welcome to VideoHost",
		HTML: fmt.Sprintf("<p>Hi %s,</p><p>Your account is ready. Head to the catalogue and upload your first video.</p>",
			template.HTMLEscapeString(to)),
	})
	if err != nil {
		slog.Error("email_send_failed", "to", to, "error", err.Error())
	}
}

// handleLogout handles POST /logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cookie, err := r.Cookie(middleware.SessionCookieName())
	if err == nil {
		sessions.Delete(cookie.Value)
	}

	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
