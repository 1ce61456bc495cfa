package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/gorilla/mux"
	"github.com/jagaapp/jaga/server/auth"
	"github.com/jagaapp/jaga/server/auth/key"
	"github.com/jagaapp/jaga/server/escalation"
	"github.com/jagaapp/jaga/server/i18n"
	"github.com/jagaapp/jaga/server/models"
	"github.com/jagaapp/jaga/server/registry"
	"gorm.io/gorm"
)

const authTokenDuration = 24 * time.Hour

// ---------------------------------------------------------------------------------//
// Accounts & auth
// --------------------------------------------------------------------------------//

func createUser(rw http.ResponseWriter, r *http.Request) {
	data := models.User{}

	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	if errs := validate.Struct(data); errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	if err := models.CreateUser(&data); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	data.Password = ""
	writeSuccess(rw, data)
}

func logIn(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	json.NewDecoder(r.Body).Decode(&data)

	passwordHash, err := models.FindUserPassword(data["email"])
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if !auth.CheckPasswordHash(data["password"], passwordHash) {
		writeResponse(rw, ResponsePayload{Errors: []string{"email/password is invalid"}}, http.StatusUnauthorized)
		return
	}

	user, err := models.FindUserBy("email", data["email"])
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	tokenString, err := auth.EncodeJWT(auth.JagaTokenClaims{
		FirstName: user.FirstName,
		Language:  user.Language,
		StandardClaims: jwt.StandardClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(authTokenDuration).Unix(),
		},
	}, authKeyPair)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	// A successful sign-in also refreshes the account's own push token, so
	// other users' escalations can reach this account. Best-effort.
	if data["notification_token"] != "" {
		tokenLifecycle.Register(user.ID, data["notification_token"])
	}

	writeSuccess(rw, map[string]interface{}{"token": tokenString, "user": user})
}

func findUser(rw http.ResponseWriter, r *http.Request) {
	user, err := models.FindUserBy("id", mux.Vars(r)["uid"])
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusNotFound)
		return
	}
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeSuccess(rw, user)
}

func updateUser(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]interface{})

	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	removeUnknownFields(data, map[string]bool{
		"first_name": true, "last_name": true, "phone_number": true, "language": true, "password": true,
	})
	if len(data) == 0 {
		writeResponse(rw, ResponsePayload{Errors: []string{"valid fields required"}}, http.StatusBadRequest)
		return
	}

	user, err := models.FindUserBy("id", mux.Vars(r)["uid"])
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusNotFound)
		return
	}
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if err := user.Update(data); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeSuccess(rw, nil)
}

func jwks(rw http.ResponseWriter, r *http.Request) {
	keyPairJWK, err := authKeyPair.JWK()
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(key.ExportJWKAsJWKS(keyPairJWK))
}

func healthCheck(rw http.ResponseWriter, r *http.Request) {
	writeSuccess(rw, map[string]string{"status": "ok"})
}

// ---------------------------------------------------------------------------------//
// Device tokens
// --------------------------------------------------------------------------------//

// registerDeviceToken is the client-driven half of token lifecycle: the
// device reports its current push token whenever the platform hands it a
// new one.
func registerDeviceToken(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	json.NewDecoder(r.Body).Decode(&data)

	if strings.TrimSpace(data["token"]) == "" {
		writeResponse(rw, ResponsePayload{Errors: []string{"token is required"}}, http.StatusBadRequest)
		return
	}

	tokenLifecycle.Register(requestAccountID(r), data["token"])
	writeSuccess(rw, nil)
}

// ---------------------------------------------------------------------------------//
// Contacts
// --------------------------------------------------------------------------------//

func listContacts(rw http.ResponseWriter, r *http.Request) {
	contacts, err := contactRegistry.List(requestAccountID(r))
	if err != nil {
		writeRegistryError(rw, err)
		return
	}

	writeSuccess(rw, contacts)
}

func createContact(rw http.ResponseWriter, r *http.Request) {
	input := registry.ContactInput{}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	if errs := validate.Struct(input); errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	contact, err := contactRegistry.Add(requestAccountID(r), input)
	if err != nil {
		writeRegistryError(rw, err)
		return
	}

	writeSuccess(rw, contact)
}

func updateContact(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]interface{})

	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	removeUnknownFields(data, models.ContactUpdatableFields)
	if len(data) == 0 {
		writeResponse(rw, ResponsePayload{Errors: []string{"valid fields required"}}, http.StatusBadRequest)
		return
	}

	contact, err := contactRegistry.Update(requestAccountID(r), mux.Vars(r)["id"], data)
	if err != nil {
		writeRegistryError(rw, err)
		return
	}

	writeSuccess(rw, contact)
}

func deleteContact(rw http.ResponseWriter, r *http.Request) {
	existed, err := contactRegistry.Remove(requestAccountID(r), mux.Vars(r)["id"])
	if err != nil {
		writeRegistryError(rw, err)
		return
	}

	writeSuccess(rw, map[string]bool{"existed": existed})
}

func emergencyContacts(rw http.ResponseWriter, r *http.Request) {
	writeSuccess(rw, contactRegistry.EmergencyContacts(requestAccountID(r)))
}

// ---------------------------------------------------------------------------------//
// Incidents
// --------------------------------------------------------------------------------//

func openIncident(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	json.NewDecoder(r.Body).Decode(&data)

	category, err := escalation.ParseCategory(data["category"], data["label"])
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	view, err := escalationManager.Select(requestAccountID(r), category)
	if err != nil {
		writeEscalationError(rw, err)
		return
	}

	writeSuccess(rw, view)
}

func currentIncident(rw http.ResponseWriter, r *http.Request) {
	view, ok := escalationManager.Current(requestAccountID(r))
	if !ok {
		writeResponse(rw, ResponsePayload{Errors: []string{"no active incident"}}, http.StatusNotFound)
		return
	}

	writeSuccess(rw, view)
}

func notifyIncident(rw http.ResponseWriter, r *http.Request) {
	view, err := escalationManager.Notify(r.Context(), requestAccountID(r))
	if err != nil {
		writeEscalationError(rw, err)
		return
	}

	writeSuccess(rw, view)
}

func markIncidentSafe(rw http.ResponseWriter, r *http.Request) {
	view, err := escalationManager.MarkSafe(requestAccountID(r))
	if err != nil {
		writeEscalationError(rw, err)
		return
	}

	writeSuccess(rw, view)
}

func resetIncident(rw http.ResponseWriter, r *http.Request) {
	if err := escalationManager.Reset(requestAccountID(r)); err != nil {
		writeEscalationError(rw, err)
		return
	}

	writeSuccess(rw, nil)
}

func abandonIncident(rw http.ResponseWriter, r *http.Request) {
	escalationManager.Abandon(requestAccountID(r))
	writeSuccess(rw, nil)
}

func callForHelp(rw http.ResponseWriter, r *http.Request) {
	lang := i18n.DefaultLanguage
	decodedJWT := r.Context().Value(RequestContextKey("decodedJWT")).(DecodedJWT)
	if decodedJWT.Claims != nil && decodedJWT.Claims.Language != "" {
		lang = decodedJWT.Claims.Language
	}

	// not r.Context(): the speech loop must outlive this request
	escalationManager.CallForHelp(context.Background(), lang)
	writeSuccess(rw, nil)
}

func incidentHistory(rw http.ResponseWriter, r *http.Request) {
	logs, err := models.IncidentLogsFor(requestAccountID(r))
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeSuccess(rw, logs)
}

// ---------------------------------------------------------------------------------//
// Error mapping
// --------------------------------------------------------------------------------//

func writeRegistryError(rw http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrNotAuthenticated):
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusUnauthorized)
	case errors.Is(err, registry.ErrContactNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		writeResponse(rw, ResponsePayload{Errors: []string{registry.ErrContactNotFound.Error()}}, http.StatusNotFound)
	default:
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
	}
}

func writeEscalationError(rw http.ResponseWriter, err error) {
	if errors.Is(err, escalation.ErrInvalidTransition) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusConflict)
		return
	}

	writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
}
