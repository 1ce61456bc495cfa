package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
)

var phoneNumberRegex = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

type ResponsePayload struct {
	Errors  []string    `json:"errors,omitempty"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad ResponsePayload, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(payLoad.Errors)
	} else if statusCode >= http.StatusBadRequest {
		logg.Info(payLoad.Errors)
	}

	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

func writeSuccess(rw http.ResponseWriter, data interface{}) {
	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: data})
}

func removeUnknownFields(args map[string]interface{}, validFields map[string]bool) {
	for key := range args {
		if !validFields[key] {
			delete(args, key)
		}
	}
}

// requestAccountID resolves the {uid} path var into an account id; 0 means
// the path carried no usable id.
func requestAccountID(r *http.Request) uint {
	uid, err := strconv.ParseUint(mux.Vars(r)["uid"], 10, 64)
	if err != nil {
		return 0
	}

	return uint(uid)
}

func RegisterValidators(validate *validator.Validate) error {
	err := validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		// if whitespace in password return false
		err := validate.Var(fl.Field().String(), "contains= ")
		if err == nil {
			return false
		}
		return len(fl.Field().String()) > 0
	})
	if err != nil {
		return err
	}

	return validate.RegisterValidation("e164", func(fl validator.FieldLevel) bool {
		return phoneNumberRegex.MatchString(fl.Field().String())
	})
}
