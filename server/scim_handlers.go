package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/go-scim-gateway/internal/errors"
	"github.com/jrsteele09/go-scim-gateway/scim"
	"github.com/jrsteele09/go-scim-gateway/users"
)

// SCIMUsersListHandler lists users in the SCIM ListResponse envelope.
// Supports filter, startIndex and count query parameters.
func (s *Server) SCIMUsersListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		filter, err := users.ParseFilter(query.Get("filter"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "unsupported filter expression")
			return
		}

		startIndex, _ := strconv.Atoi(query.Get("startIndex"))
		count, _ := strconv.Atoi(query.Get("count"))
		startIndex, count = users.ClampPage(startIndex, count)

		records, total, err := s.repo.List(r.Context(), filter, startIndex, count)
		if err != nil {
			log.Error().Err(err).Msg("user listing failed")
			writeError(w, http.StatusInternalServerError, "failed to list users")
			return
		}

		resources := make([]*scim.WireUser, 0, len(records))
		for _, record := range records {
			resources = append(resources, s.translator.ToWire(record))
		}

		writeSCIM(w, http.StatusOK, scim.ListResponse{
			Schemas:      []string{scim.SchemaListResponse},
			TotalResults: total,
			StartIndex:   startIndex,
			ItemsPerPage: len(resources),
			Resources:    resources,
		})
	}
}

// SCIMUserCreateHandler provisions a new user from a wire document.
func (s *Server) SCIMUserCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc scim.WireUser
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			writeError(w, http.StatusBadRequest, "invalid SCIM document")
			return
		}

		record, err := s.translator.NewResource(&doc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid SCIM document")
			return
		}

		if err := s.repo.Create(r.Context(), record); err != nil {
			if errors.Is(err, apperrors.ErrDuplicateResource) {
				writeError(w, http.StatusConflict, "user already exists: "+record.UserName)
				return
			}
			log.Error().Err(err).Msg("user creation failed")
			writeError(w, http.StatusInternalServerError, "failed to create user")
			return
		}

		wire := s.translator.ToWire(record)
		s.replicateCreate(record.ID, wire)
		writeSCIM(w, http.StatusCreated, wire)
	}
}

// SCIMUserGetHandler fetches a single user.
func (s *Server) SCIMUserGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := s.repo.Get(r.Context(), r.PathValue("userID"))
		if err != nil {
			writeNotFoundOrInternal(w, err, "failed to fetch user")
			return
		}
		writeSCIM(w, http.StatusOK, s.translator.ToWire(record))
	}
}

// SCIMUserReplaceHandler is the PUT full-replace operation: absent fields
// are cleared, server-managed fields are carried through.
func (s *Server) SCIMUserReplaceHandler() http.HandlerFunc {
	return s.scimUpdateHandler(false)
}

// SCIMUserPatchHandler is the PATCH partial-update operation: absent fields
// keep their existing values.
func (s *Server) SCIMUserPatchHandler() http.HandlerFunc {
	return s.scimUpdateHandler(true)
}

func (s *Server) scimUpdateHandler(partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		existing, err := s.repo.Get(r.Context(), r.PathValue("userID"))
		if err != nil {
			writeNotFoundOrInternal(w, err, "failed to fetch user")
			return
		}

		var doc scim.WireUser
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			writeError(w, http.StatusBadRequest, "invalid SCIM document")
			return
		}

		record, err := s.translator.FromWire(&doc, existing, partial)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid SCIM document")
			return
		}
		record.LastModified = time.Now().UTC()
		record.Version = nextVersion(existing.Version)

		if err := s.repo.Update(r.Context(), record); err != nil {
			switch {
			case errors.Is(err, apperrors.ErrDuplicateResource):
				writeError(w, http.StatusConflict, "user already exists: "+record.UserName)
			case errors.Is(err, apperrors.ErrResourceNotFound):
				writeError(w, http.StatusNotFound, "user not found")
			default:
				log.Error().Err(err).Str("userID", record.ID).Msg("user update failed")
				writeError(w, http.StatusInternalServerError, "failed to update user")
			}
			return
		}

		wire := s.translator.ToWire(record)
		s.replicateUpdate(record.ID, wire)
		writeSCIM(w, http.StatusOK, wire)
	}
}

// SCIMUserDeleteHandler removes a user and replicates the deletion.
func (s *Server) SCIMUserDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.PathValue("userID")
		if err := s.repo.Delete(r.Context(), userID); err != nil {
			writeNotFoundOrInternal(w, err, "failed to delete user")
			return
		}
		s.replicateDelete(userID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeNotFoundOrInternal(w http.ResponseWriter, err error, internalMessage string) {
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	log.Error().Err(err).Msg(internalMessage)
	writeError(w, http.StatusInternalServerError, internalMessage)
}

func nextVersion(version string) string {
	n, err := strconv.Atoi(version)
	if err != nil {
		return "1"
	}
	return strconv.Itoa(n + 1)
}

func (s *Server) replicateCreate(userID string, doc any) {
	if s.dispatcher != nil {
		s.dispatcher.UserCreated(userID, doc)
	}
}

func (s *Server) replicateUpdate(userID string, doc any) {
	if s.dispatcher != nil {
		s.dispatcher.UserUpdated(userID, doc)
	}
}

func (s *Server) replicateDelete(userID string) {
	if s.dispatcher != nil {
		s.dispatcher.UserDeleted(userID)
	}
}
