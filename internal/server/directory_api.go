package server

import (
	"net/http"
	"strings"

	directorytypes "github.com/lodestarhq/lodestar/modules/directory/domain/types"
	directoryservices "github.com/lodestarhq/lodestar/modules/directory/services"
)

type groupAPIRequest struct {
	GroupName        string                       `json:"group_name"`
	GroupDescription string                       `json:"group_description"`
	GroupSource      string                       `json:"group_source"`
	Selected         []directorytypes.GroupMember `json:"selected"`
}

func (req groupAPIRequest) toUpsert() directoryservices.UpsertGroupRequest {
	return directoryservices.UpsertGroupRequest{
		GroupName:        strings.TrimSpace(req.GroupName),
		GroupDescription: req.GroupDescription,
		GroupSource:      req.GroupSource,
		Selected:         req.Selected,
	}
}

func handleGroupCreate(svc directoryservices.GroupWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req groupAPIRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}

		id, err := svc.Create(r.Context(), req.toUpsert())
		if err != nil {
			writeServiceError(w, err, "GROUP_CREATE_FAILED")
			return
		}
		writeJSON(w, http.StatusCreated, createdResponse{ID: id})
	}
}

func handleGroupGet(svc directoryservices.GroupWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		group, err := svc.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err, "GROUP_GET_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, group)
	}
}

func handleGroupUpdate(svc directoryservices.GroupWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req groupAPIRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}

		counts, err := svc.Update(r.Context(), r.PathValue("id"), req.toUpsert())
		if err != nil {
			writeServiceError(w, err, "GROUP_UPDATE_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, cascadeCountsResponse{Modified: counts})
	}
}

func handleGroupDelete(svc directoryservices.GroupWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := svc.Delete(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err, "GROUP_DELETE_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, cascadeCountsResponse{Modified: counts})
	}
}

func handleGroupList(svc directoryservices.GroupWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := listParamsFromRequest(r)
		names, total, err := svc.List(r.Context(), p.Search, p.Offset, p.Limit)
		if err != nil {
			writeServiceError(w, err, "GROUP_LIST_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, nameListResponse{Names: names, Total: total})
	}
}

type sharingRuleAPIRequest struct {
	Modules                   []directorytypes.ModuleRef   `json:"modules"`
	RecordsSharedFrom         string                       `json:"records_shared_from"`
	RecordsSharedFromSelected []directorytypes.GroupMember `json:"records_shared_from_selected"`
	RecordsSharedTo           string                       `json:"records_shared_to"`
	RecordsSharedToSelected   []directorytypes.GroupMember `json:"records_shared_to_selected"`
	AccessType                string                       `json:"access_type"`
	SuperiorsAllowed          bool                         `json:"superiors_allowed"`
}

func (req sharingRuleAPIRequest) toUpsert() directoryservices.UpsertSharingRuleRequest {
	return directoryservices.UpsertSharingRuleRequest{
		Modules:                   req.Modules,
		RecordsSharedFrom:         req.RecordsSharedFrom,
		RecordsSharedFromSelected: req.RecordsSharedFromSelected,
		RecordsSharedTo:           req.RecordsSharedTo,
		RecordsSharedToSelected:   req.RecordsSharedToSelected,
		AccessType:                req.AccessType,
		SuperiorsAllowed:          req.SuperiorsAllowed,
	}
}

func handleSharingRuleCreate(svc directoryservices.SharingRuleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sharingRuleAPIRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}

		id, err := svc.Create(r.Context(), req.toUpsert())
		if err != nil {
			writeServiceError(w, err, "SHARING_RULE_CREATE_FAILED")
			return
		}
		writeJSON(w, http.StatusCreated, createdResponse{ID: id})
	}
}

func handleSharingRuleGet(svc directoryservices.SharingRuleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rule, err := svc.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err, "SHARING_RULE_GET_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, rule)
	}
}

func handleSharingRuleUpdate(svc directoryservices.SharingRuleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sharingRuleAPIRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}

		if err := svc.Update(r.Context(), r.PathValue("id"), req.toUpsert()); err != nil {
			writeServiceError(w, err, "SHARING_RULE_UPDATE_FAILED")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSharingRuleDelete(svc directoryservices.SharingRuleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), r.PathValue("id")); err != nil {
			writeServiceError(w, err, "SHARING_RULE_DELETE_FAILED")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSharingRuleList(svc directoryservices.SharingRuleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rules, err := svc.List(r.Context())
		if err != nil {
			writeServiceError(w, err, "SHARING_RULE_LIST_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, rules)
	}
}

type userAPIRequest struct {
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Territories []string `json:"territories"`
	Profile     string   `json:"profile"`
}

func handleUserCreate(svc directoryservices.UserWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req userAPIRequest
		if !decodeJSONBody(w, r, &req) {
			return
		}

		id, err := svc.Create(r.Context(), directoryservices.CreateUserRequest{
			FirstName:   strings.TrimSpace(req.FirstName),
			LastName:    strings.TrimSpace(req.LastName),
			Email:       strings.TrimSpace(req.Email),
			Role:        strings.TrimSpace(req.Role),
			Territories: req.Territories,
			Profile:     strings.TrimSpace(req.Profile),
		})
		if err != nil {
			writeServiceError(w, err, "USER_CREATE_FAILED")
			return
		}
		writeJSON(w, http.StatusCreated, createdResponse{ID: id})
	}
}

func handleUserGet(svc directoryservices.UserWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err, "USER_GET_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

type userListResponse struct {
	Users []directorytypes.User `json:"users"`
	Total int64                 `json:"total"`
}

func handleUserList(svc directoryservices.UserWriteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := listParamsFromRequest(r)
		users, total, err := svc.List(r.Context(), p.Search, p.Offset, p.Limit)
		if err != nil {
			writeServiceError(w, err, "USER_LIST_FAILED")
			return
		}
		writeJSON(w, http.StatusOK, userListResponse{Users: users, Total: total})
	}
}
