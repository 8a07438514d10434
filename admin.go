package lizechat

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) != 1 {
		a.loginLimiter.Record(ip)
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "invalid password"})
	}
	if err := setAdminSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"csrf": CsrfToken(c)})
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleAdminReindex(c echo.Context) error {
	if !IsAdmin(c) {
		return echo.ErrUnauthorized
	}
	cat, err := a.Reindex(c.Request().Context())
	if err != nil {
		return err
	}
	problems := make([]map[string]string, 0, len(cat.Problems))
	for _, p := range cat.Problems {
		problems = append(problems, map[string]string{"path": p.Path, "error": p.Err.Error()})
	}
	counts := make(map[string]int, len(cat.Entries))
	for name, es := range cat.Entries {
		counts[name] = len(es)
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": counts, "problems": problems})
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return echo.ErrUnauthorized
	}
	col, err := a.collection(c)
	if err != nil {
		return err
	}
	slug := c.Param("slug")
	path, err := a.Loader.EntryFile(col.Name, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "entry not found")
		}
		return err
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	if err := a.Store.DeleteEntry(col.Name, slug); err != nil {
		return err
	}
	a.Cache.Invalidate()
	a.Logger.Infof("deleted %s", path)
	return c.NoContent(http.StatusNoContent)
}
