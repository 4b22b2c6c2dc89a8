package main

import (
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates
var templatesFS embed.FS

const (
	cookieName  = "opificio_token"
	defaultPort = "3000"
	defaultAPI  = "http://localhost:8080"
	envWebPort  = "OPIFICIO_WEB_PORT"
	envAPIURL   = "OPIFICIO_API_URL"
)

func main() {
	port := getEnv(envWebPort, defaultPort)
	apiBase := getEnv(envAPIURL, defaultAPI)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health (no auth, no templates)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Public
	r.Get("/login", loginForm)
	r.Post("/login", loginSubmit(apiBase))
	r.Get("/logout", logout)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(requireAuth(apiBase))
		r.Get("/", redirectDashboard)
		r.Get("/dashboard", dashboard(apiBase))
		r.Get("/workorders", workOrdersList(apiBase))
		r.Get("/workorders/{id}", workOrderDetail(apiBase))
		r.Post("/workorders/{id}/timer/{action}", timerAction(apiBase))
		r.Post("/workorders/{id}/status", statusAction(apiBase))
		r.Get("/schedules", schedulesList(apiBase))
		r.Post("/schedules/scan", runScan(apiBase))
		r.Get("/assistant", assistantForm)
		r.Post("/assistant", assistantAsk(apiBase))
	})

	log.Printf("Web UI running on http://localhost:%s (API: %s)", port, apiBase)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

func renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// requireAuth redirects to /login if cookie is missing or if the API returns 401 (invalid/expired token).
func requireAuth(apiBase string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := r.Cookie(cookieName)
			if err != nil || token.Value == "" {
				http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
				return
			}
			// Validate token with API so expired/invalid tokens send user to login before any page loads.
			_, status, _ := apiGet(apiBase, "/v1/workorders?limit=1", token.Value)
			if status == http.StatusUnauthorized {
				clearAuthAndRedirectToLogin(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func redirectDashboard(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func loginForm(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(cookieName); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	renderTemplate(w, "login.html", map[string]string{})
}

func loginSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if username == "" {
			renderTemplate(w, "login.html", map[string]string{"Error": "Username is required"})
			return
		}

		body, _ := json.Marshal(map[string]string{"username": username, "password": password})
		data, status, err := apiPost(apiBase, "/auth/login", "", body)
		if err != nil {
			renderTemplate(w, "login.html", map[string]string{"Error": "Cannot reach API: " + err.Error()})
			return
		}
		if status != http.StatusOK {
			var errResp struct{ Error string }
			_ = json.Unmarshal(data, &errResp)
			msg := errResp.Error
			if msg == "" {
				msg = string(data)
			}
			renderTemplate(w, "login.html", map[string]string{"Error": msg})
			return
		}

		var out struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(data, &out); err != nil || out.Token == "" {
			renderTemplate(w, "login.html", map[string]string{"Error": "Invalid login response"})
			return
		}

		next := r.URL.Query().Get("next")
		if next == "" {
			next = "/dashboard"
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    out.Token,
			Path:     "/",
			MaxAge:   24 * 3600,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, next, http.StatusFound)
	}
}

func logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusFound)
}

// clearAuthAndRedirectToLogin clears the token cookie and redirects to login with next=current path.
// Call when the API returns 401 (expired or invalid token) so the user can sign in again.
func clearAuthAndRedirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/login?next="+url.QueryEscape(next), http.StatusFound)
}

func cookieToken(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

type workOrderView struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Category string `json:"category"`
	AssetID  int    `json:"asset_id"`
}

func dashboard(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := cookieToken(r)

		counts := map[string]int{}
		for _, status := range []string{"OPEN", "IN_PROGRESS", "COMPLETED", "PENDING_APPROVAL"} {
			data, code, err := apiGet(apiBase, "/v1/workorders?limit=1&status="+status, token)
			if err != nil || code != http.StatusOK {
				continue
			}
			var resp struct {
				Total int `json:"total"`
			}
			_ = json.Unmarshal(data, &resp)
			counts[status] = resp.Total
		}

		renderTemplate(w, "dashboard.html", map[string]interface{}{"Counts": counts})
	}
}

func workOrdersList(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := "/v1/workorders"
		if s := r.URL.Query().Get("status"); s != "" {
			path += "?status=" + url.QueryEscape(s)
		}
		data, code, err := apiGet(apiBase, path, cookieToken(r))
		if err != nil || code != http.StatusOK {
			http.Error(w, "failed to load work orders", http.StatusBadGateway)
			return
		}
		var resp struct {
			Items []workOrderView `json:"items"`
			Total int             `json:"total"`
		}
		_ = json.Unmarshal(data, &resp)
		renderTemplate(w, "workorders.html", resp)
	}
}

func workOrderDetail(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		token := cookieToken(r)

		data, code, err := apiGet(apiBase, "/v1/workorders/"+id, token)
		if err != nil || code != http.StatusOK {
			http.NotFound(w, r)
			return
		}
		var wo workOrderView
		_ = json.Unmarshal(data, &wo)

		var laborResp struct {
			Sessions []struct {
				UserID          int    `json:"user_id"`
				StartTime       string `json:"start_time"`
				EndTime         string `json:"end_time"`
				DurationMinutes int    `json:"duration_minutes"`
				Note            string `json:"note"`
			} `json:"sessions"`
			Total struct {
				RecordedMinutes int `json:"recorded_minutes"`
				ActiveSessions  int `json:"active_sessions"`
				TotalMinutes    int `json:"total_minutes"`
			} `json:"total"`
		}
		if data, code, err := apiGet(apiBase, "/v1/workorders/"+id+"/labor", token); err == nil && code == http.StatusOK {
			_ = json.Unmarshal(data, &laborResp)
		}

		renderTemplate(w, "workorder.html", map[string]interface{}{
			"WO":       wo,
			"Sessions": laborResp.Sessions,
			"Total":    laborResp.Total,
		})
	}
}

func timerAction(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		action := chi.URLParam(r, "action")
		switch action {
		case "start", "pause", "stop":
		default:
			http.NotFound(w, r)
			return
		}
		apiPost(apiBase, "/v1/workorders/"+id+"/timer/"+action, cookieToken(r), []byte(`{}`))
		http.Redirect(w, r, "/workorders/"+id, http.StatusFound)
	}
}

func statusAction(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		body, _ := json.Marshal(map[string]string{"status": r.FormValue("status")})
		apiPost(apiBase, "/v1/workorders/"+id+"/status", cookieToken(r), body)
		http.Redirect(w, r, "/workorders/"+id, http.StatusFound)
	}
}

func schedulesList(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, code, err := apiGet(apiBase, "/v1/schedules", cookieToken(r))
		if err != nil || code != http.StatusOK {
			http.Error(w, "failed to load schedules", http.StatusBadGateway)
			return
		}
		var resp struct {
			Items []struct {
				ID            int    `json:"id"`
				AssetID       int    `json:"asset_id"`
				TaskTitle     string `json:"task_title"`
				FrequencyDays int    `json:"frequency_days"`
				NextDueDate   string `json:"next_due_date"`
			} `json:"items"`
		}
		_ = json.Unmarshal(data, &resp)
		renderTemplate(w, "schedules.html", resp)
	}
}

func runScan(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apiPost(apiBase, "/v1/scan/run", cookieToken(r), nil)
		http.Redirect(w, r, "/schedules", http.StatusFound)
	}
}

func assistantForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, "assistant.html", map[string]string{})
}

func assistantAsk(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		message := r.FormValue("message")
		body, _ := json.Marshal(map[string]string{"message": message})
		data, _, err := apiPost(apiBase, "/v1/assistant", cookieToken(r), body)
		if err != nil {
			renderTemplate(w, "assistant.html", map[string]string{"Error": err.Error()})
			return
		}
		var reply struct {
			Text   string `json:"reply"`
			Source string `json:"source"`
		}
		_ = json.Unmarshal(data, &reply)
		renderTemplate(w, "assistant.html", map[string]string{
			"Question": message,
			"Reply":    reply.Text,
			"Source":   reply.Source,
		})
	}
}

// apiGet performs GET to API with token from request cookie.
func apiGet(apiBase, path, token string) ([]byte, int, error) {
	req, _ := http.NewRequest("GET", apiBase+path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

// apiPost performs POST to API with token and JSON body.
func apiPost(apiBase, path, token string, body []byte) ([]byte, int, error) {
	req, _ := http.NewRequest("POST", apiBase+path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}
