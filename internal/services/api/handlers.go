package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/temirov/shellhint/internal/geometry"
	"github.com/temirov/shellhint/internal/types"
)

const (
	maximumRequestBytes        = 4 << 20
	decodeRequestErrorFormat   = "decode request: %w"
	validateRequestErrorFormat = "validate request: %w"
)

var requestValidator = validator.New()

// PositionRequest is the body of the complete and hover endpoints.
type PositionRequest struct {
	Text      string `json:"text"`
	Line      int    `json:"line" validate:"gte=0"`
	Character int    `json:"character" validate:"gte=0"`
}

// Assistant answers completion and hover queries over raw document text.
type Assistant interface {
	Complete(ctx context.Context, document string, position geometry.Position) ([]types.Candidate, error)
	Hover(ctx context.Context, document string, position geometry.Position) (*types.Hover, error)
}

func (server Server) handleComplete(writer http.ResponseWriter, request *http.Request) {
	positionRequest, decodeError := decodePositionRequest(request.Body)
	if decodeError != nil {
		writeError(writer, http.StatusBadRequest, decodeError)
		return
	}
	candidates, completeError := server.config.Assistant.Complete(request.Context(), positionRequest.Text, positionRequest.position())
	if completeError != nil {
		writeError(writer, http.StatusInternalServerError, completeError)
		return
	}
	if candidates == nil {
		candidates = []types.Candidate{}
	}
	writeJSON(writer, http.StatusOK, resultEnvelope{Result: types.CompletionOutput{
		Line:       positionRequest.Line,
		Character:  positionRequest.Character,
		Candidates: candidates,
	}})
}

func (server Server) handleHover(writer http.ResponseWriter, request *http.Request) {
	positionRequest, decodeError := decodePositionRequest(request.Body)
	if decodeError != nil {
		writeError(writer, http.StatusBadRequest, decodeError)
		return
	}
	hover, hoverError := server.config.Assistant.Hover(request.Context(), positionRequest.Text, positionRequest.position())
	if hoverError != nil {
		writeError(writer, http.StatusInternalServerError, hoverError)
		return
	}
	writeJSON(writer, http.StatusOK, resultEnvelope{Result: types.HoverOutput{
		Line:      positionRequest.Line,
		Character: positionRequest.Character,
		Found:     hover != nil,
		Hover:     hover,
	}})
}

func (positionRequest PositionRequest) position() geometry.Position {
	return geometry.NewPosition(positionRequest.Line, positionRequest.Character)
}

func decodePositionRequest(body io.Reader) (PositionRequest, error) {
	var positionRequest PositionRequest
	if decodeError := json.NewDecoder(io.LimitReader(body, maximumRequestBytes)).Decode(&positionRequest); decodeError != nil {
		return PositionRequest{}, fmt.Errorf(decodeRequestErrorFormat, decodeError)
	}
	if validationError := requestValidator.Struct(positionRequest); validationError != nil {
		return PositionRequest{}, fmt.Errorf(validateRequestErrorFormat, validationError)
	}
	return positionRequest, nil
}
