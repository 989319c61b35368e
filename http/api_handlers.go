package http

import (
	"encoding/json"
	"errors"
	"net/http"
)

func (h *Handler) handleAPIPredict(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json: " + err.Error()})
		return
	}

	resp, err := h.predictJSON(r, channelAPI, body)
	if err != nil {
		code, payload := classify(err)
		respondJSON(w, code, payload)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) predictJSON(r *http.Request, channel string, body map[string]interface{}) (predictResponse, error) {
	in, _, err := parseInput(jsonGetter(body))
	if err != nil {
		h.record(channel, err)
		return predictResponse{}, err
	}
	res, rec, err := h.predict(r.Context(), channel, in)
	if err != nil {
		return predictResponse{}, err
	}
	return newPredictResponse(res, rec), nil
}
