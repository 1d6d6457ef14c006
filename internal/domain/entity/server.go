package entity

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/lite-lake/technisync/internal/domain"
)

// Server is one Technitium DNS server under synchronization.
type Server struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

func (s *Server) Validate() error {
	if s.Name == "" {
		return domain.RequiredField("name")
	}
	if s.URL == "" {
		return domain.RequiredField("url")
	}
	u, err := url.Parse(s.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %s", domain.ErrInvalidURL, s.URL)
	}
	if s.APIKey == "" {
		return domain.RequiredField("api_key")
	}
	return nil
}

// Host returns the server's hostname without scheme or port, used to
// address its resolver on port 53.
func (s *Server) Host() string {
	u, err := url.Parse(s.URL)
	if err != nil {
		return strings.TrimSuffix(s.URL, "/")
	}
	return u.Hostname()
}

func (s *Server) String() string {
	return fmt.Sprintf("Server(name=%s, url=%s)", s.Name, s.URL)
}
