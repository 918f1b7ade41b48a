package mcproxy

import (
	"net/http"
	"net/url"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
)

// NewNativeHandler returns a handler proxying to upstream. Without an
// upstream every request is answered with 404.
func NewNativeHandler(upstream string) (echo.HandlerFunc, error) {
	if upstream == "" {
		return notVirtual, nil
	}

	u, err := url.Parse(upstream)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid native API url %s", upstream)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("native API url %s needs a scheme and host", upstream)
	}

	balancer := NewBalancer(&middleware.ProxyTarget{Name: u.Host, URL: u})
	proxy := middleware.ProxyWithConfig(middleware.ProxyConfig{
		Balancer: balancer,
		Skipper:  middleware.DefaultSkipper,
	})

	log.Infof("Native requests are proxied to %s", upstream)
	return proxy(notVirtual), nil
}

func notVirtual(c echo.Context) error {
	return echo.NewHTTPError(http.StatusNotFound, "not a virtual resource")
}
