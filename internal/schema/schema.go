// Package schema validates incident payloads coming from the alerting
// backend and normalizes them into model types. Validation never stops at
// the first problem: every failing field is reported.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/edvin/alertboard/internal/model"
)

var validate = validator.New()

var dateKeyRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterValidation("datekey", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if !dateKeyRegex.MatchString(s) {
			return false
		}
		_, err := time.Parse(time.DateOnly, s)
		return err == nil
	})
}

// FieldError is a single failed field, addressed by its JSON path.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError reports every field that failed validation.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Path == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, f.Path+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// enumRules carries the closed-set fields of an incident through validator.
type enumRules struct {
	Status  string `json:"status" validate:"oneof=triggered acknowledged resolved"`
	Urgency string `json:"urgency" validate:"oneof=low high"`
}

// ValidateResponse validates a full incidents envelope. A response with any
// invalid part is rejected as a whole.
func ValidateResponse(raw []byte) (*model.IncidentsResponse, error) {
	c := &collector{}
	obj, ok := c.object(raw, "")
	if !ok {
		return nil, c.err()
	}

	resp := &model.IncidentsResponse{Summary: model.NewDailySummary()}

	if v, ok := obj.required("incidents", "", c); ok {
		if items, ok := c.array(v, "incidents"); ok {
			resp.Incidents = make([]model.Incident, 0, len(items))
			for i, item := range items {
				resp.Incidents = append(resp.Incidents, c.incident(item, fmt.Sprintf("incidents[%d]", i)))
			}
		}
	}
	if v, ok := obj.required("summary", "", c); ok {
		resp.Summary = c.summary(v, "summary")
	}
	if v, ok := obj.required("team", "", c); ok {
		resp.Team = c.team(v, "team")
	}

	if err := c.err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// ValidateIncident validates a single incident object.
func ValidateIncident(raw []byte) (model.Incident, error) {
	c := &collector{}
	inc := c.incident(raw, "")
	if err := c.err(); err != nil {
		return model.Incident{}, err
	}
	return inc, nil
}

// ValidateTeam validates a single team object.
func ValidateTeam(raw []byte) (model.Team, error) {
	c := &collector{}
	t := c.team(raw, "")
	if err := c.err(); err != nil {
		return model.Team{}, err
	}
	return t, nil
}

// ValidateTeams validates a list of team objects.
func ValidateTeams(raw []byte) ([]model.Team, error) {
	c := &collector{}
	items, ok := c.array(raw, "")
	if !ok {
		return nil, c.err()
	}
	teams := make([]model.Team, 0, len(items))
	for i, item := range items {
		teams = append(teams, c.team(item, fmt.Sprintf("[%d]", i)))
	}
	if err := c.err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (c *collector) incident(raw json.RawMessage, path string) model.Incident {
	obj, ok := c.object(raw, path)
	if !ok {
		return model.Incident{}
	}

	inc := model.Incident{
		ID:          obj.integer("id", path, c),
		IncidentID:  obj.str("incident_id", path, c),
		Title:       obj.str("title", path, c),
		Description: obj.str("description", path, c),
		Summary:     obj.str("summary", path, c),
		Team:        obj.integer("team", path, c),
		Actionable:  obj.optBool("actionable", path, c),
	}

	skip := map[string]bool{}
	status, ok := obj.strOK("status", path, c)
	if !ok {
		skip["status"] = true
	}
	urgency, ok := obj.strOK("urgency", path, c)
	if !ok {
		skip["urgency"] = true
	}
	c.rules(validate.Struct(enumRules{Status: status, Urgency: urgency}), path, skip)
	inc.Status = status
	inc.Urgency = model.Urgency(urgency)

	inc.CreatedAt = obj.timestamp("created_at", path, c)

	if v, present := obj["annotation"]; present && kind(v) != "null" {
		inc.Annotation = c.annotation(v, join(path, "annotation"))
	}
	return inc
}

func (c *collector) annotation(raw json.RawMessage, path string) *model.Annotation {
	obj, ok := c.object(raw, path)
	if !ok {
		return nil
	}
	return &model.Annotation{
		CreatedAt: obj.timestamp("created_at", path, c),
		Summary:   obj.str("summary", path, c),
	}
}

func (c *collector) team(raw json.RawMessage, path string) model.Team {
	obj, ok := c.object(raw, path)
	if !ok {
		return model.Team{}
	}
	return model.Team{
		ID:          obj.integer("id", path, c),
		TeamID:      obj.str("team_id", path, c),
		Name:        obj.str("name", path, c),
		Alias:       obj.optStr("alias", path, c),
		Summary:     obj.str("summary", path, c),
		CreatedAt:   obj.timestamp("created_at", path, c),
		LastChecked: obj.timestamp("last_checked", path, c),
	}
}

func (c *collector) summary(raw json.RawMessage, path string) *model.DailySummary {
	out := model.NewDailySummary()
	if k := kind(raw); k != "object" {
		c.add(path, "must be an object, got %s", k)
		return out
	}

	days := orderedmap.New[string, json.RawMessage]()
	if err := days.UnmarshalJSON(raw); err != nil {
		c.add(path, "must be an object: %v", err)
		return out
	}

	for pair := days.Oldest(); pair != nil; pair = pair.Next() {
		dayPath := join(path, pair.Key)
		if err := validate.Var(pair.Key, "datekey"); err != nil {
			c.add(dayPath, "date key must be in YYYY-MM-DD format")
		}
		obj, ok := c.object(pair.Value, dayPath)
		if !ok {
			continue
		}
		count := model.DayCount{
			High: int(obj.integer("high", dayPath, c)),
			Low:  int(obj.integer("low", dayPath, c)),
		}
		c.rules(validate.Struct(count), dayPath, nil)
		out.Set(pair.Key, count)
	}
	return out
}

// collector accumulates field errors.
type collector struct {
	fields []FieldError
}

func (c *collector) add(path, format string, args ...any) {
	c.fields = append(c.fields, FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *collector) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.fields}
}

// rules converts validator failures into field errors under path. Fields in
// skip already failed their type check and are not reported twice.
func (c *collector) rules(err error, path string, skip map[string]bool) {
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.add(path, "%v", err)
		return
	}
	for _, fe := range verrs {
		if skip[fe.Field()] {
			continue
		}
		c.add(join(path, fe.Field()), "%s", ruleMessage(fe))
	}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.Join(strings.Fields(fe.Param()), ", "))
	case "min":
		if fe.Param() == "0" {
			return "must be a non-negative integer"
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}

func (c *collector) object(raw json.RawMessage, path string) (object, bool) {
	if k := kind(raw); k != "object" {
		c.add(path, "must be an object, got %s", k)
		return nil, false
	}
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		c.add(path, "malformed object: %v", err)
		return nil, false
	}
	return obj, true
}

func (c *collector) array(raw json.RawMessage, path string) ([]json.RawMessage, bool) {
	if k := kind(raw); k != "array" {
		c.add(path, "must be an array, got %s", k)
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		c.add(path, "malformed array: %v", err)
		return nil, false
	}
	return items, true
}

type object map[string]json.RawMessage

func (o object) required(key, path string, c *collector) (json.RawMessage, bool) {
	v, ok := o[key]
	if !ok {
		c.add(join(path, key), "is required")
		return nil, false
	}
	return v, true
}

func (o object) str(key, path string, c *collector) string {
	s, _ := o.strOK(key, path, c)
	return s
}

func (o object) strOK(key, path string, c *collector) (string, bool) {
	v, ok := o.required(key, path, c)
	if !ok {
		return "", false
	}
	if k := kind(v); k != "string" {
		c.add(join(path, key), "must be a string, got %s", k)
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		c.add(join(path, key), "malformed string: %v", err)
		return "", false
	}
	return s, true
}

func (o object) optStr(key, path string, c *collector) *string {
	v, ok := o[key]
	if !ok || kind(v) == "null" {
		return nil
	}
	s, ok := o.strOK(key, path, c)
	if !ok {
		return nil
	}
	return &s
}

func (o object) integer(key, path string, c *collector) int64 {
	v, ok := o.required(key, path, c)
	if !ok {
		return 0
	}
	if k := kind(v); k != "number" {
		c.add(join(path, key), "must be an integer, got %s", k)
		return 0
	}
	n, err := json.Number(bytes.TrimSpace(v)).Int64()
	if err != nil {
		c.add(join(path, key), "must be an integer")
		return 0
	}
	return n
}

func (o object) optBool(key, path string, c *collector) *bool {
	v, ok := o[key]
	if !ok || kind(v) == "null" {
		return nil
	}
	if k := kind(v); k != "boolean" {
		c.add(join(path, key), "must be a boolean or null, got %s", k)
		return nil
	}
	b := bytes.Equal(bytes.TrimSpace(v), []byte("true"))
	return &b
}

func (o object) timestamp(key, path string, c *collector) time.Time {
	s, ok := o.strOK(key, path, c)
	if !ok {
		return time.Time{}
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		c.add(join(path, key), "%v", err)
		return time.Time{}
	}
	return t
}

// kind names the JSON type of raw from its first significant byte.
func kind(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "nothing"
	}
	switch raw[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return "number"
	default:
		return "invalid JSON"
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
