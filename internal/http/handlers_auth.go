package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"freteiro/internal/auth"
)

// callbackPage posts the authenticated profile back to the window that
// opened the consent popup, then closes it.
const callbackPage = `<html>
  <body>
    <script>
      if (window.opener) {
        window.opener.postMessage({ type: 'OAUTH_AUTH_SUCCESS', user: %s }, '*');
        window.close();
      } else {
        document.body.innerHTML = 'Authentication successful. You can close this window.';
      }
    </script>
    <p>Authentication successful. Closing...</p>
  </body>
</html>`

func (s *Server) handleAuthURL(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	url, err := s.relay.AuthURL()
	if err != nil {
		slog.ErrorContext(r.Context(), "OAuth relay not configured", "error", err)
		writeError(w, http.StatusInternalServerError,
			"Configuração ausente: GOOGLE_CLIENT_ID não definido. Configure as credenciais do Google OAuth.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "No code provided", http.StatusBadRequest)
		return
	}

	profile, err := s.relay.Exchange(r.Context(), code)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, auth.ErrNotConfigured) {
			slog.ErrorContext(r.Context(), "OAuth callback without configured relay")
		} else {
			slog.ErrorContext(r.Context(), "OAuth code exchange failed", "error", err)
		}
		http.Error(w, "Authentication failed", status)
		return
	}

	userJSON, err := json.Marshal(profile)
	if err != nil {
		slog.ErrorContext(r.Context(), "Marshal profile failed", "error", err)
		http.Error(w, "Authentication failed", http.StatusInternalServerError)
		return
	}

	slog.InfoContext(r.Context(), "OAuth login completed", "email", profile.Email)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, callbackPage, userJSON)
}
