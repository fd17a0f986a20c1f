package adapthttp

import "net/http"

const sessionCookieName = "auth_token"

// sessionCookie writes and reads the session token cookie with a fixed flag
// set: HttpOnly, SameSite=Lax, Path=/. Secure is on outside dev. maxAge
// matches the token TTL in seconds so the cookie and token expire together.
type sessionCookie struct {
	secure bool
	maxAge int
}

func (c sessionCookie) set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   c.maxAge,
	})
}

// read returns the token carried by the session cookie, or "" if the cookie
// is absent. An absent cookie is the normal anonymous state, not an error.
func (c sessionCookie) read(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// clear deletes the session cookie. Clearing an absent cookie is a no-op.
func (c sessionCookie) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
