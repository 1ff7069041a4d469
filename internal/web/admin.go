package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/portfolio/internal/auth"
	"github.com/hitoshi/portfolio/internal/middleware"
	"github.com/hitoshi/portfolio/internal/model"
)

// saveFailedMessage は管理画面の保存失敗時に表示する汎用メッセージ。
const saveFailedMessage = "Failed to save changes. Please review the form and try again."

// formFailure はフォーム送信の失敗内容。
type formFailure struct {
	Message string
	Detail  string
}

// failure はエラーをステータスコードと画面表示用のメッセージに変換する。
// 入力内容に起因するエラーは詳細（不足項目や重複slug）も表示し、それ以外は汎用メッセージのみとする。
func (p *Pages) failure(r *http.Request, op string, err error) (int, *formFailure) {
	f := &formFailure{Message: saveFailedMessage}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case model.ErrCodeValidation, model.ErrCodeInvalidRequest:
			f.Detail = apiErr.Message
			return http.StatusBadRequest, f
		case model.ErrCodeSlugConflict:
			f.Detail = apiErr.Message
			return http.StatusConflict, f
		case model.ErrCodeProjectNotFound:
			f.Detail = apiErr.Message
			return http.StatusNotFound, f
		case model.ErrCodeUnauthorized:
			f.Detail = "Your session has expired. Sign in again to continue."
			return http.StatusUnauthorized, f
		}
	}

	p.logger.ErrorContext(r.Context(), "admin save failed",
		slog.String("op", op),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	return http.StatusServiceUnavailable, f
}

// safeNext はログイン後のリダイレクト先を管理画面内のパスに限定する。
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/admin") ||
		strings.HasPrefix(next, "//") ||
		strings.ContainsAny(next, "\\\r\n") ||
		strings.HasPrefix(next, LoginPath) {
		return "/admin"
	}
	return next
}

// parseForm はフォームを解析する。失敗時は400のエラーページを返してfalseを返す。
func (p *Pages) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		p.renderError(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return false
	}
	return true
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

type loginView struct {
	Email string
	Next  string
	Error string
}

func (p *Pages) loginForm(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if auth.IsAuthenticated(r.Context()) {
		redirect(w, r, next)
		return
	}
	p.render(w, r, http.StatusOK, "admin_login", p.newPageData(r, "Admin Login", nil, loginView{Next: next}))
}

// login はフォームの資格情報を検証し、成功時にセッションCookieを発行して管理画面へ遷移する。
func (p *Pages) login(w http.ResponseWriter, r *http.Request) {
	view := loginView{
		Email: strings.TrimSpace(r.PostFormValue("email")),
		Next:  safeNext(r.PostFormValue("next")),
	}
	password := r.PostFormValue("password")

	fail := func(status int, msg string) {
		view.Error = msg
		p.render(w, r, status, "admin_login", p.newPageData(r, "Admin Login", nil, view))
	}

	if view.Email == "" || password == "" {
		fail(http.StatusBadRequest, "Email and password are required.")
		return
	}
	if p.auth == nil {
		fail(http.StatusServiceUnavailable, "Sign-in is not available.")
		return
	}

	session, err := p.auth.Login(r.Context(), view.Email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			fail(http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		p.logger.ErrorContext(r.Context(), "admin login failed", slog.String("error", err.Error()))
		fail(http.StatusServiceUnavailable, "Sign-in is temporarily unavailable. Please try again.")
		return
	}

	middleware.SetSessionCookie(w, session.ID, p.cookie)
	redirect(w, r, view.Next)
}

// logout はセッションを破棄してログインページへ遷移する。
// ストアからの削除に失敗してもCookieは削除する。
func (p *Pages) logout(w http.ResponseWriter, r *http.Request) {
	if id := middleware.SessionIDFromRequest(r); id != "" && p.auth != nil {
		if err := p.auth.Logout(r.Context(), id); err != nil {
			p.logger.WarnContext(r.Context(), "logout failed", slog.String("error", err.Error()))
		}
	}
	middleware.ClearSessionCookie(w, p.cookie)
	redirect(w, r, LoginPath)
}

type dashboardView struct {
	ProjectCount  int
	FeaturedCount int
	LastUpdated   time.Time
}

func (p *Pages) dashboard(w http.ResponseWriter, r *http.Request) {
	snap := p.load(r.Context(), loadOptions{projects: true})

	featured := 0
	for _, pr := range snap.Projects {
		if pr.Featured {
			featured++
		}
	}
	p.render(w, r, http.StatusOK, "admin_dashboard", p.newPageData(r, "Dashboard", nil, dashboardView{
		ProjectCount:  len(snap.Projects),
		FeaturedCount: featured,
		LastUpdated:   snap.Site.UpdatedAt,
	}))
}
