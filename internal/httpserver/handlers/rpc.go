package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/snote/internal/domain"
	"github.com/MrSnakeDoc/snote/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snote/internal/service"
)

// Procedure call envelope used by /api/rpc/{procedure}.
//
// Queries are GET requests carrying their input as JSON in the "input"
// query parameter; mutations are POST requests with the input as the body.
// Successful calls answer {"result":{"data":...}}, failures
// {"error":{"message":...,"code":...,"httpStatus":...}}.
type (
	rpcResult struct {
		Result rpcData `json:"result"`
	}
	rpcData struct {
		Data any `json:"data"`
	}
	rpcErrorEnvelope struct {
		Error rpcError `json:"error"`
	}
	rpcError struct {
		Message    string `json:"message"`
		Code       string `json:"code"`
		HTTPStatus int    `json:"httpStatus"`
	}
)

const codeMethodNotSupported = "METHOD_NOT_SUPPORTED"

type procedure struct {
	mutation bool
	call     func(ctx context.Context, svc *service.EntryService, input json.RawMessage) (any, error)
}

type rpcUpdateInput struct {
	ID string `json:"id"`
	domain.UpdateInput
}

type rpcDeleteResult struct {
	ID string `json:"id"`
}

var procedures = map[string]procedure{
	"entries.getAll": {
		call: func(ctx context.Context, svc *service.EntryService, _ json.RawMessage) (any, error) {
			return svc.List(ctx)
		},
	},
	"entries.getById": {
		call: func(ctx context.Context, svc *service.EntryService, input json.RawMessage) (any, error) {
			id, err := rpcInput[string](input)
			if err != nil {
				return nil, err
			}
			return svc.Get(ctx, id)
		},
	},
	"entries.create": {
		mutation: true,
		call: func(ctx context.Context, svc *service.EntryService, input json.RawMessage) (any, error) {
			in, err := rpcInput[domain.CreateInput](input)
			if err != nil {
				return nil, err
			}
			return svc.Create(ctx, in)
		},
	},
	"entries.update": {
		mutation: true,
		call: func(ctx context.Context, svc *service.EntryService, input json.RawMessage) (any, error) {
			in, err := rpcInput[rpcUpdateInput](input)
			if err != nil {
				return nil, err
			}
			return svc.Update(ctx, in.ID, in.UpdateInput)
		},
	},
	"entries.delete": {
		mutation: true,
		call: func(ctx context.Context, svc *service.EntryService, input json.RawMessage) (any, error) {
			id, err := rpcInput[string](input)
			if err != nil {
				return nil, err
			}
			if err := svc.Delete(ctx, id); err != nil {
				return nil, err
			}
			return rpcDeleteResult{ID: id}, nil
		},
	},
	"entries.copy": {
		mutation: true,
		call: func(ctx context.Context, svc *service.EntryService, input json.RawMessage) (any, error) {
			id, err := rpcInput[string](input)
			if err != nil {
				return nil, err
			}
			return svc.Copy(ctx, id)
		},
	},
}

func rpcInput[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 || strings.TrimSpace(string(raw)) == "null" {
		return v, fmt.Errorf("%w: input is required", domain.ErrValidation)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: invalid input: %v", domain.ErrValidation, err)
	}
	return v, nil
}

// RPC dispatches /api/rpc/{procedure} calls to the entry service.
func RPC(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "procedure")
		proc, ok := procedures[name]
		if !ok {
			writeRPCError(w, http.StatusNotFound, domain.CodeNotFound, fmt.Sprintf("no procedure %q", name))
			return
		}

		want := http.MethodGet
		if proc.mutation {
			want = http.MethodPost
		}
		if r.Method != want {
			w.Header().Set("Allow", want)
			writeRPCError(w, http.StatusMethodNotAllowed, codeMethodNotSupported,
				fmt.Sprintf("%s only accepts %s", name, want))
			return
		}

		var input json.RawMessage
		if proc.mutation {
			if err := decodeJSON(w, r, d.MaxBodyBytes, &input); err != nil {
				writeRPCFailure(w, r, d, err)
				return
			}
		} else if raw := r.URL.Query().Get("input"); raw != "" {
			input = json.RawMessage(raw)
		}

		data, err := proc.call(r.Context(), d.Entries, input)
		if err != nil {
			writeRPCFailure(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, rpcResult{Result: rpcData{Data: data}})
	}
}

func writeRPCFailure(w http.ResponseWriter, r *http.Request, d deps.Deps, err error) {
	status, code, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		d.Logger.Error("rpc call failed", loggerFields(r, err)...)
	}
	writeRPCError(w, status, code, msg)
}

func writeRPCError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, rpcErrorEnvelope{Error: rpcError{Message: msg, Code: code, HTTPStatus: status}})
}
