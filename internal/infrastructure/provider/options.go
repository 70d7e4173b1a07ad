package provider

import (
	"net/http"
	"time"
)

type Option func(*Gateway)

func BaseURL(url string) Option {
	return func(g *Gateway) {
		g.baseURL = url
	}
}

// Attribution sets the HTTP-Referer, X-Title and User-Agent headers.
func Attribution(referer, title, userAgent string) Option {
	return func(g *Gateway) {
		g.referer = referer
		g.title = title
		g.userAgent = userAgent
	}
}

func AttemptTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		g.attemptTimeout = timeout
	}
}

func MaxTokens(n int) Option {
	return func(g *Gateway) {
		g.maxTokens = n
	}
}

func Temperature(t float64) Option {
	return func(g *Gateway) {
		g.temperature = t
	}
}

func HTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		g.client = c
	}
}
