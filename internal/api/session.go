package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vivalabs/viva/internal/interview"
)

// maxDocumentBytes bounds uploads; larger documents get truncated by
// the excerpt logic anyway.
const maxDocumentBytes = 2 << 20

// maxAudioBytes bounds one captured answer.
const maxAudioBytes = 16 << 20

type documentRequest struct {
	Text     string `json:"text"`
	Modality string `json:"modality"`
}

type answerRequest struct {
	Text string `json:"text"`
}

type playbackRequest struct {
	Playing bool `json:"playing"`
}

type answerResponse struct {
	Question   string             `json:"question"`
	Audio      []byte             `json:"audio,omitempty"`
	Transcript string             `json:"transcript,omitempty"`
	State      interview.Snapshot `json:"state"`
}

func (s *Server) submitDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxDocumentBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid JSON: %v", err)})
		return
	}

	result, err := s.ctrl.SubmitDocument(r.Context(), req.Text, interview.Modality(req.Modality))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{
		Question: result.Question,
		Audio:    result.Audio,
		State:    s.ctrl.Snapshot(),
	})
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid JSON: %v", err)})
		return
	}

	result, err := s.ctrl.SubmitAnswer(r.Context(), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{
		Question: result.Question,
		Audio:    result.Audio,
		State:    s.ctrl.Snapshot(),
	})
}

func (s *Server) submitAudioAnswer(w http.ResponseWriter, r *http.Request) {
	audio, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("read audio: %v", err)})
		return
	}
	hint := r.URL.Query().Get("hint")

	result, err := s.ctrl.SubmitAudioAnswer(r.Context(), audio, hint)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{
		Question:   result.Question,
		Audio:      result.Audio,
		Transcript: result.Transcript,
		State:      s.ctrl.Snapshot(),
	})
}

func (s *Server) retryQuestion(w http.ResponseWriter, r *http.Request) {
	result, err := s.ctrl.RetryQuestion(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{
		Question: result.Question,
		Audio:    result.Audio,
		State:    s.ctrl.Snapshot(),
	})
}

func (s *Server) requestAdvance(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.RequestManualAdvance(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) confirmAdvance(w http.ResponseWriter, r *http.Request) {
	result, err := s.ctrl.ConfirmAdvance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{
		Question: result.Question,
		Audio:    result.Audio,
		State:    s.ctrl.Snapshot(),
	})
}

func (s *Server) cancelAdvance(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.CancelManualConfirm(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) notifyTyping(w http.ResponseWriter, r *http.Request) {
	s.ctrl.NotifyTyping()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) notifyPlayback(w http.ResponseWriter, r *http.Request) {
	var req playbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid JSON: %v", err)})
		return
	}
	s.ctrl.NotifyPlayback(req.Playing)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Reset()
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) recentInterviews(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "interview archive is not configured"})
		return
	}
	list, err := s.archive.ListRecent(r.Context(), 20)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"interviews": list, "count": len(list)})
}
