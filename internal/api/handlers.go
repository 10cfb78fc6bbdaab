package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vampirenirmal/lumina/internal/manuscript"
	"github.com/vampirenirmal/lumina/internal/persist"
	"github.com/vampirenirmal/lumina/internal/session"
)

type handler struct {
	sess *session.Session
}

type outlineRequest struct {
	Idea string `json:"idea"`
}

type chapterPatch struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type refineRequest struct {
	Instruction string `json:"instruction"`
}

type refineResponse struct {
	Applied bool               `json:"applied"`
	Chapter manuscript.Chapter `json:"chapter"`
}

type museResponse struct {
	Suggestion string `json:"suggestion"`
}

type zoomRequest struct {
	Zoom float64 `json:"zoom"`
}

type spreadResponse struct {
	session.Preview
	Moved bool `json:"moved"`
}

type coverImageRequest struct {
	Style string `json:"style"`
}

type coverImageResponse struct {
	CoverURL string `json:"coverUrl"`
}

type formatsResponse struct {
	Formats []string `json:"formats"`
}

// revisionResponse adds the history panel's formatted timestamp.
type revisionResponse struct {
	manuscript.Revision
	DisplayTime string `json:"displayTime"`
}

func newRevisionResponse(rev manuscript.Revision) revisionResponse {
	return revisionResponse{Revision: rev, DisplayTime: rev.DisplayTime()}
}

type profileResponse struct {
	SignedIn bool             `json:"signedIn"`
	Profile  *persist.Profile `json:"profile,omitempty"`
}

func (h *handler) getBook(w http.ResponseWriter, r *http.Request) error {
	respondJSON(w, http.StatusOK, h.sess.Book())
	return nil
}

func (h *handler) patchMetadata(w http.ResponseWriter, r *http.Request) error {
	var patch manuscript.MetadataPatch
	if err := decodeJSON(r, &patch); err != nil {
		return err
	}
	if err := h.sess.UpdateMetadata(patch); err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, h.sess.Book().Metadata)
	return nil
}

func (h *handler) getStats(w http.ResponseWriter, r *http.Request) error {
	respondJSON(w, http.StatusOK, h.sess.Stats())
	return nil
}

func (h *handler) getSaveStatus(w http.ResponseWriter, r *http.Request) error {
	respondJSON(w, http.StatusOK, h.sess.SaveStatus())
	return nil
}

func (h *handler) postOutline(w http.ResponseWriter, r *http.Request) error {
	var req outlineRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if req.Idea == "" {
		return errBadRequest("idea is required", nil)
	}
	book, err := h.sess.ApplyOutline(r.Context(), req.Idea)
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, book)
	return nil
}

func (h *handler) postChapter(w http.ResponseWriter, r *http.Request) error {
	respondJSON(w, http.StatusCreated, h.sess.AddChapter())
	return nil
}

func (h *handler) getActiveChapter(w http.ResponseWriter, r *http.Request) error {
	respondJSON(w, http.StatusOK, h.sess.ActiveChapter())
	return nil
}

func (h *handler) selectChapter(w http.ResponseWriter, r *http.Request) error {
	ch, ok := h.sess.SelectChapter(chi.URLParam(r, paramID))
	if !ok {
		return errNotFound("Chapter not found")
	}
	respondJSON(w, http.StatusOK, ch)
	return nil
}

func (h *handler) patchChapter(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, paramID)
	var patch chapterPatch
	if err := decodeJSON(r, &patch); err != nil {
		return err
	}
	if patch.Title != nil && h.sess.UpdateChapterTitle(id, *patch.Title) == manuscript.Missed {
		return errNotFound("Chapter not found")
	}
	if patch.Content != nil && h.sess.UpdateChapterContent(id, *patch.Content) == manuscript.Missed {
		return errNotFound("Chapter not found")
	}
	return h.respondChapter(w, id)
}

func (h *handler) getRevisions(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, paramID)
	if _, ok := h.sess.Chapter(id); !ok {
		return errNotFound("Chapter not found")
	}
	revs := h.sess.Revisions(id)
	out := make([]revisionResponse, 0, len(revs))
	for _, rev := range revs {
		out = append(out, newRevisionResponse(rev))
	}
	respondJSON(w, http.StatusOK, out)
	return nil
}

func (h *handler) postRevision(w http.ResponseWriter, r *http.Request) error {
	rev, outcome := h.sess.Checkpoint(chi.URLParam(r, paramID))
	if outcome == manuscript.Missed {
		return errNotFound("Chapter not found")
	}
	respondJSON(w, http.StatusCreated, newRevisionResponse(rev))
	return nil
}

func (h *handler) restoreRevision(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, paramID)
	if h.sess.Restore(id, chi.URLParam(r, paramRevID)) == manuscript.Missed {
		return errNotFound("Revision not found")
	}
	return h.respondChapter(w, id)
}

func (h *handler) postRefine(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, paramID)
	var req refineRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if _, ok := h.sess.Chapter(id); !ok {
		return errNotFound("Chapter not found")
	}
	outcome, err := h.sess.Refine(r.Context(), id, req.Instruction)
	if err != nil {
		return err
	}
	ch, _ := h.sess.Chapter(id)
	respondJSON(w, http.StatusOK, refineResponse{Applied: outcome == manuscript.Applied, Chapter: ch})
	return nil
}

func (h *handler) getMuse(w http.ResponseWriter, r *http.Request) error {
	suggestion, err := h.sess.Muse(r.Context(), chi.URLParam(r, paramID))
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, museResponse{Suggestion: suggestion})
	return nil
}

func (h *handler) getPreview(w http.ResponseWriter, r *http.Request) error {
	respondJSON(w, http.StatusOK, h.sess.Preview())
	return nil
}

func (h *handler) nextSpread(w http.ResponseWriter, r *http.Request) error {
	p, moved := h.sess.NextSpread()
	respondJSON(w, http.StatusOK, spreadResponse{Preview: p, Moved: moved})
	return nil
}

func (h *handler) prevSpread(w http.ResponseWriter, r *http.Request) error {
	p, moved := h.sess.PrevSpread()
	respondJSON(w, http.StatusOK, spreadResponse{Preview: p, Moved: moved})
	return nil
}

func (h *handler) putZoom(w http.ResponseWriter, r *http.Request) error {
	var req zoomRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, h.sess.SetZoom(req.Zoom))
	return nil
}

func (h *handler) suggestLayout(w http.ResponseWriter, r *http.Request) error {
	layout, err := h.sess.SuggestLayout(r.Context())
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, layout)
	return nil
}

func (h *handler) suggestCover(w http.ResponseWriter, r *http.Request) error {
	suggestion, err := h.sess.SuggestCover(r.Context())
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, suggestion)
	return nil
}

func (h *handler) generateCover(w http.ResponseWriter, r *http.Request) error {
	var req coverImageRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
	}
	url, err := h.sess.GenerateCover(r.Context(), req.Style)
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, coverImageResponse{CoverURL: url})
	return nil
}

func (h *handler) getFormats(w http.ResponseWriter, r *http.Request) error {
	respondJSON(w, http.StatusOK, formatsResponse{Formats: h.sess.ExportFormats()})
	return nil
}

func (h *handler) getExport(w http.ResponseWriter, r *http.Request) error {
	a, err := h.sess.Export(r.Context(), chi.URLParam(r, paramFormat))
	if err != nil {
		return err
	}
	w.Header().Set(headerContentType, a.ContentType)
	w.Header().Set(headerContentDisposition, fmt.Sprintf("attachment; filename=%q", a.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Data)
	return nil
}

func (h *handler) getProfile(w http.ResponseWriter, r *http.Request) error {
	p, ok := h.sess.Profile()
	resp := profileResponse{SignedIn: ok}
	if ok {
		resp.Profile = &p
	}
	respondJSON(w, http.StatusOK, resp)
	return nil
}

func (h *handler) signIn(w http.ResponseWriter, r *http.Request) error {
	var p persist.Profile
	if err := decodeJSON(r, &p); err != nil {
		return err
	}
	signed, err := h.sess.SignIn(r.Context(), p)
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, profileResponse{SignedIn: true, Profile: &signed})
	return nil
}

func (h *handler) signOut(w http.ResponseWriter, r *http.Request) error {
	if err := h.sess.SignOut(r.Context()); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *handler) respondChapter(w http.ResponseWriter, id string) error {
	ch, ok := h.sess.Chapter(id)
	if !ok {
		return errNotFound("Chapter not found")
	}
	respondJSON(w, http.StatusOK, ch)
	return nil
}
