package common

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// DataResponse is the success envelope: {"data": {"<Entity>": payload}, "additional_data": ...}.
type DataResponse struct {
	Data           map[string]interface{} `json:"data"`
	AdditionalData interface{}            `json:"additional_data"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

func RespondWithMessage(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, MessageResponse{Message: message})
}

// RespondWithData wraps payload under the entity name. additional may be nil.
func RespondWithData(w http.ResponseWriter, code int, entity string, payload interface{}, additional interface{}) {
	RespondWithJSON(w, code, DataResponse{
		Data:           map[string]interface{}{entity: payload},
		AdditionalData: additional,
	})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
