package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lifetree/lifetree/pkg/auth"
	"github.com/lifetree/lifetree/pkg/buildinfo"
	"github.com/lifetree/lifetree/pkg/cache"
	"github.com/lifetree/lifetree/pkg/errors"
	"github.com/lifetree/lifetree/pkg/pipeline"
	"github.com/lifetree/lifetree/pkg/selection"
	"github.com/lifetree/lifetree/pkg/timeline"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

// options builds pipeline options for the authenticated owner from the
// server defaults and the query string.
func (s *Server) options(r *http.Request, formats ...string) (pipeline.Options, error) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return pipeline.Options{}, errors.New(errors.ErrCodeUnauthorized, "not authenticated")
	}

	opts := s.Defaults
	opts.Owner = claims.Owner()
	opts.Formats = formats
	opts.Logger = s.logger()

	q := r.URL.Query()
	for name, dst := range map[string]*bool{
		"refresh":   &opts.Refresh,
		"no_header": &opts.NoHeader,
		"detailed":  &opts.Detailed,
	} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return pipeline.Options{}, badRequest("query parameter %s: %q is not a boolean", name, v)
			}
			*dst = b
		}
	}
	if v := q.Get("side_order"); v != "" {
		opts.SideOrder = v
	}
	if _, err := opts.LayoutOptions(); err != nil {
		return pipeline.Options{}, badRequest("%s", errors.UserMessage(err))
	}
	return opts, nil
}

func (s *Server) timeline(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap, hit, err := s.Runner.LoadWithCacheInfo(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	s.artifact(w, r, pipeline.FormatJSON, "application/json")
}

func (s *Server) layoutSVG(w http.ResponseWriter, r *http.Request) {
	s.artifact(w, r, pipeline.FormatSVG, "image/svg+xml")
}

func (s *Server) artifact(w http.ResponseWriter, r *http.Request, format, contentType string) {
	opts, err := s.options(r, format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.Runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	body := res.Artifacts[format]
	etag := `"` + cache.Hash(body)[:16] + `"`
	w.Header().Set("ETag", etag)
	setCacheHeader(w, res.CacheInfo.LayoutHit)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

type nodeResponse struct {
	selection.Detail
	Sources []timeline.Source `json:"sources,omitempty"`
}

func (s *Server) node(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "nodeID")
	if err := errors.ValidateID("node", id); err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := s.options(r, pipeline.FormatJSON)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.Runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	detail, err := selection.Select(res.Layout, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := nodeResponse{Detail: detail}
	for _, n := range res.Snapshot.Nodes {
		if n.ID == id {
			resp.Sources = n.Sources
			break
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// refresh accepts the current token in the JSON body or the Authorization
// header.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
			writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode refresh request"))
			return
		}
	}
	current := req.RefreshToken
	if current == "" {
		current = strings.TrimSpace(r.Header.Get("Authorization"))
	}

	token, err := auth.Refresh(s.Validator, s.Issuer, current, s.RefreshWindow)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.Issuer.TTL() / time.Second),
	})
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
}
