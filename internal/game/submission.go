package game

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"

	"github.com/verte-zerg/levelscore/internal/model"
)

// RequiredFields lists the keys every submission must carry.
var RequiredFields = []string{
	"score",
	"correct_steps",
	"wrong_steps",
	"interstep_times",
	"step_types",
	"level_complete",
}

// ParseSubmission validates a raw JSON submission and decodes it.
// A null value counts as a missing field.
func ParseSubmission(body []byte) (model.Submission, error) {
	if !gjson.ValidBytes(body) {
		return model.Submission{}, validationError(msgInvalidData, "")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return model.Submission{}, validationError(msgInvalidData, "")
	}
	for _, field := range RequiredFields {
		value := doc.Get(field)
		if !value.Exists() || value.Type == gjson.Null {
			return model.Submission{}, validationError(msgMissingField, field)
		}
	}

	var sub model.Submission
	if err := json.Unmarshal(body, &sub); err != nil {
		field := ""
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field = typeErr.Field
		}
		return model.Submission{}, validationError(msgInvalidData, field)
	}
	if err := validateSubmission(sub); err != nil {
		return model.Submission{}, err
	}
	return sub, nil
}

func validateSubmission(sub model.Submission) error {
	switch {
	case sub.Score < 0:
		return validationError(msgInvalidData, "score")
	case sub.CorrectSteps < 0:
		return validationError(msgInvalidData, "correct_steps")
	case sub.WrongSteps < 0:
		return validationError(msgInvalidData, "wrong_steps")
	}
	return nil
}
