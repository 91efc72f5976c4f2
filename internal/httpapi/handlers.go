package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/ZaguanLabs/gotara"
	"github.com/ZaguanLabs/gotara/internal/logger"
	"github.com/ZaguanLabs/gotara/rules"
)

// maxTextLength is the largest text, in characters (runes), accepted per
// translation. The validator's max tags count runes too and must agree.
const maxTextLength = 10000

type translateRequest struct {
	Text      string `json:"text" validate:"required,max=10000"`
	Direction string `json:"direction" validate:"omitempty,direction"`
}

type translateResponse struct {
	Text      string                      `json:"text"`
	Direction gotara.TranslationDirection `json:"direction"`
}

type batchRequest struct {
	Texts     []string `json:"texts" validate:"required,min=1,max=256,dive,max=10000"`
	Direction string   `json:"direction" validate:"omitempty,direction"`
}

type batchResponse struct {
	Texts      []string                      `json:"texts"`
	Direction  gotara.TranslationDirection   `json:"direction"`
	Directions []gotara.TranslationDirection `json:"directions"`
}

type htmlRequest struct {
	HTML      string `json:"html" validate:"required"`
	Direction string `json:"direction" validate:"omitempty,direction"`
}

type htmlResponse struct {
	HTML            string                      `json:"html"`
	Direction       gotara.TranslationDirection `json:"direction"`
	TranslatedCount int                         `json:"translated_count"`
	CachedCount     int                         `json:"cached_count"`
	TotalNodes      int                         `json:"total_nodes"`
}

type detectQuery struct {
	Text string `json:"text" validate:"required,max=10000"`
}

type detectResponse struct {
	Direction  gotara.TranslationDirection `json:"direction"`
	SourceLang string                      `json:"source_lang"`
	TargetLang string                      `json:"target_lang"`
}

type ruleView struct {
	English   string `json:"english"`
	Taralians string `json:"taralians"`
	Direction string `json:"direction"`
	Priority  int    `json:"priority"`
	Word      bool   `json:"word"`
	Origin    string `json:"origin,omitempty"`
}

type rulesResponse struct {
	Direction gotara.TranslationDirection `json:"direction"`
	Count     int                         `json:"count"`
	Rules     []ruleView                  `json:"rules"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[translateRequest](r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	dir, err := gotara.ParseDirection(req.Direction)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	dir, err = gotara.ResolveDirection(req.Text, dir)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out, err := s.tr.Translate(req.Text, dir)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, translateResponse{Text: out, Direction: dir})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[batchRequest](r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	dir, err := gotara.ParseDirection(req.Direction)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out, err := s.tr.TranslateBatch(r.Context(), req.Texts, dir, s.cfg.Workers)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	dirs := make([]gotara.TranslationDirection, len(req.Texts))
	for i, text := range req.Texts {
		dirs[i], _ = gotara.ResolveDirection(text, dir)
	}
	writeJSON(w, http.StatusOK, batchResponse{Texts: out, Direction: dir, Directions: dirs})
}

func (s *Server) handleHTML(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[htmlRequest](r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	dir, err := gotara.ParseDirection(req.Direction)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.tr.ProcessHTML(r.Context(), req.HTML, dir)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, htmlResponse{
		HTML:            res.Content,
		Direction:       res.Direction,
		TranslatedCount: res.TranslatedCount,
		CachedCount:     res.CachedCount,
		TotalNodes:      res.TotalNodes,
	})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	dir, err := gotara.ParseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var rd rules.Direction // zero lists every rule
	switch dir {
	case gotara.DirectionEnglishToTaralians:
		rd = rules.EnglishToTaralians
	case gotara.DirectionTaraliansToEnglish:
		rd = rules.TaraliansToEnglish
	}

	list := s.tr.Table().Rules(rd)
	views := make([]ruleView, 0, len(list))
	for _, rule := range list {
		views = append(views, viewRule(rule))
	}
	writeJSON(w, http.StatusOK, rulesResponse{Direction: dir, Count: len(views), Rules: views})
}

// viewRule presents a rule English side first, whatever its orientation.
func viewRule(r rules.Rule) ruleView {
	english, taralians := r.Source, r.Replacement
	if r.Direction == rules.TaraliansToEnglish {
		english, taralians = r.Replacement, r.Source
	}
	return ruleView{
		English:   english,
		Taralians: taralians,
		Direction: r.Direction.String(),
		Priority:  r.Priority,
		Word:      r.Word,
		Origin:    r.Origin,
	}
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	q := detectQuery{Text: r.URL.Query().Get("text")}
	if err := validateStruct(q); err != nil {
		s.fail(w, r, err)
		return
	}

	dir := gotara.DetectDirection(q.Text)
	writeJSON(w, http.StatusOK, detectResponse{
		Direction:  dir,
		SourceLang: dir.SourceLangTag(),
		TargetLang: dir.TargetLangTag(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type versionResponse struct {
	gotara.BuildInfo
	Rules int `json:"rules"`
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, versionResponse{
		BuildInfo: gotara.Build(),
		Rules:     s.tr.Table().Len(),
	})
}

// fail maps err to a status and writes it. Client errors are logged at
// debug, everything else at error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		reqErr  *requestError
		dirErr  *gotara.DirectionError
		procErr *gotara.ProcessorError
	)

	switch {
	case errors.As(err, &reqErr):
		writeError(w, r, reqErr.Status, reqErr.Message, reqErr.Fields)
	case errors.As(err, &dirErr):
		writeError(w, r, http.StatusUnprocessableEntity, "validation failed",
			map[string]string{"direction": dirErr.Error()})
	case errors.As(err, &procErr):
		writeError(w, r, http.StatusUnprocessableEntity, procErr.Error(), nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusServiceUnavailable, "request cancelled", nil)
	default:
		log := logger.C(r.Context(), s.log)
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), nil)
		return
	}

	log := logger.C(r.Context(), s.log)
	log.Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
}
