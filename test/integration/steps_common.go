package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/cucumber/godog"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"

	"github.com/casq89/mibauu-backend/pkg/authenticator/authn"
	"github.com/casq89/mibauu-backend/pkg/config"
)

// tables are truncated in this order by "the database is empty"
var tables = []string{"order_product", "products", "category", "offer", "consent", "users"}

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	server       *ServerInstance
	response     *http.Response
	responseBody []byte
	remembered   string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.After(s.stopServer)

	// Background steps
	sc.Step(`^the server is running$`, s.theServerIsRunning)
	sc.Step(`^the database is empty$`, s.theDatabaseIsEmpty)
	sc.Step(`^the following rows exist in "([^"]*)":$`, s.theFollowingRowsExistIn)
	sc.Step(`^a user "([^"]*)" with password "([^"]*)" exists$`, s.aUserWithPasswordExists)

	// Request steps
	sc.Step(`^I send a ([A-Z]+) request to "([^"]*)"$`, s.iSendARequestTo)
	sc.Step(`^I send a ([A-Z]+) request to "([^"]*)" with body:$`, s.iSendARequestWithBody)
	sc.Step(`^I send a ([A-Z]+) form to "([^"]*)" with image "([^"]*)" and fields:$`, s.iSendAFormWithImage)
	sc.Step(`^I send a ([A-Z]+) form to "([^"]*)" with fields:$`, s.iSendAForm)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response body should be "([^"]*)"$`, s.theResponseBodyShouldBe)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, s.theResponseHeaderShouldBe)
	sc.Step(`^the response error should be "([^"]*)"$`, s.theResponseErrorShouldBe)
	sc.Step(`^the response should have (\d+) items?$`, s.theResponseShouldHaveItems)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Step(`^the response field "([^"]*)" should be null$`, s.theResponseFieldShouldBeNull)
	sc.Step(`^the response should contain a token for "([^"]*)"$`, s.theResponseShouldContainATokenFor)

	// Storage steps
	sc.Step(`^the "([^"]*)" table should have (\d+) rows?$`, s.theTableShouldHaveRows)
	sc.Step(`^the object store should hold (\d+) objects?$`, s.theObjectStoreShouldHoldObjects)
	sc.Step(`^I remember the image of the response$`, s.iRememberTheImageOfTheResponse)
	sc.Step(`^the remembered image should be gone$`, s.theRememberedImageShouldBeGone)
	sc.Step(`^the image of the response should be stored$`, s.theImageOfTheResponseShouldBeStored)
}

func (s *StepsContext) theServerIsRunning() error {
	if s.server != nil {
		return nil
	}
	instance, err := StartServer(s.tc)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.server = instance
	return nil
}

func (s *StepsContext) stopServer(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
	if s.server != nil {
		s.server.Stop()
		s.server = nil
	}
	return ctx, err
}

func (s *StepsContext) theDatabaseIsEmpty() error {
	quoted := make([]string, 0, len(tables))
	for _, t := range tables {
		quoted = append(quoted, pq.QuoteIdentifier(t))
	}
	_, err := s.tc.RawDB.Exec(`TRUNCATE ` + strings.Join(quoted, ", ") + ` RESTART IDENTITY CASCADE`)
	if err != nil {
		return err
	}
	_, err = s.tc.RawDB.Exec(`ALTER SEQUENCE product_code_seq RESTART WITH 1000`)
	return err
}

// theFollowingRowsExistIn inserts one row per table line. The first line names
// the columns; an empty cell is stored as NULL.
func (s *StepsContext) theFollowingRowsExistIn(table string, rows *godog.Table) error {
	if len(rows.Rows) < 2 {
		return fmt.Errorf("expected a header and at least one row")
	}

	header := rows.Rows[0].Cells
	columns := make([]string, 0, len(header))
	marks := make([]string, 0, len(header))
	for i, c := range header {
		columns = append(columns, pq.QuoteIdentifier(c.Value))
		marks = append(marks, fmt.Sprintf("$%d", i+1))
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		pq.QuoteIdentifier(table), strings.Join(columns, ", "), strings.Join(marks, ", "))

	for _, row := range rows.Rows[1:] {
		args := make([]interface{}, 0, len(row.Cells))
		for _, cell := range row.Cells {
			if cell.Value == "" {
				args = append(args, nil)
				continue
			}
			args = append(args, cell.Value)
		}
		if _, err := s.tc.RawDB.Exec(query, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return nil
}

func (s *StepsContext) aUserWithPasswordExists(email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	_, err = s.tc.RawDB.Exec(`INSERT INTO users (email, encrypted_password) VALUES ($1, $2)`, email, string(hash))
	return err
}

func (s *StepsContext) iSendARequestTo(method, path string) error {
	return s.send(method, path, nil, "")
}

func (s *StepsContext) iSendARequestWithBody(method, path string, body *godog.DocString) error {
	return s.send(method, path, strings.NewReader(body.Content), "application/json")
}

func (s *StepsContext) iSendAFormWithImage(method, path, filename string, fields *godog.Table) error {
	return s.sendForm(method, path, filename, fields)
}

func (s *StepsContext) iSendAForm(method, path string, fields *godog.Table) error {
	return s.sendForm(method, path, "", fields)
}

// sendForm posts a multipart body built from a two-column table of form
// fields, plus an "image" part when filename is set.
func (s *StepsContext) sendForm(method, path, filename string, fields *godog.Table) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, row := range fields.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("form fields need two columns")
		}
		if err := mw.WriteField(row.Cells[0].Value, row.Cells[1].Value); err != nil {
			return err
		}
	}

	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := part.Write([]byte("\x89PNG fake image")); err != nil {
			return err
		}
	}

	if err := mw.Close(); err != nil {
		return err
	}
	return s.send(method, path, &buf, mw.FormDataContentType())
}

func (s *StepsContext) send(method, path string, body io.Reader, contentType string) error {
	if s.server == nil {
		return fmt.Errorf("server is not running")
	}

	req, err := http.NewRequest(method, s.server.ServerURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	s.response = resp
	s.responseBody, err = io.ReadAll(resp.Body)
	return err
}

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseBodyShouldBe(expected string) error {
	if string(s.responseBody) != expected {
		return fmt.Errorf("expected body %q, got %q", expected, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseHeaderShouldBe(name, expected string) error {
	if got := s.response.Header.Get(name); got != expected {
		return fmt.Errorf("expected header %s %q, got %q", name, expected, got)
	}
	return nil
}

func (s *StepsContext) theResponseErrorShouldBe(expected string) error {
	if got := gjson.GetBytes(s.responseBody, "error"); got.String() != expected {
		return fmt.Errorf("expected error %q, got body %s", expected, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseShouldHaveItems(count int) error {
	data := gjson.GetBytes(s.responseBody, "data")
	if !data.IsArray() {
		return fmt.Errorf("response data is not a list: %s", string(s.responseBody))
	}
	if n := len(data.Array()); n != count {
		return fmt.Errorf("expected %d items, got %d: %s", count, n, string(s.responseBody))
	}
	return nil
}

// theResponseFieldShouldBe compares a gjson path, e.g. "data.0.category.name",
// against the text form of its value.
func (s *StepsContext) theResponseFieldShouldBe(path, expected string) error {
	got := gjson.GetBytes(s.responseBody, path)
	if !got.Exists() {
		return fmt.Errorf("field %s not found in %s", path, string(s.responseBody))
	}
	if got.String() != expected {
		return fmt.Errorf("expected %s to be %q, got %q", path, expected, got.String())
	}
	return nil
}

func (s *StepsContext) theResponseFieldShouldBeNull(path string) error {
	got := gjson.GetBytes(s.responseBody, path)
	if got.Type != gjson.Null {
		return fmt.Errorf("expected %s to be null, got %s", path, got.Raw)
	}
	return nil
}

func (s *StepsContext) theResponseShouldContainATokenFor(email string) error {
	var body struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return fmt.Errorf("invalid login response: %w", err)
	}
	if body.User.Email != email {
		return fmt.Errorf("expected user %q, got %q", email, body.User.Email)
	}

	claims := &authn.Claims{}
	_, err := jwt.ParseWithClaims(body.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}
	if claims.Email != email {
		return fmt.Errorf("token issued for %q, expected %q", claims.Email, email)
	}
	return nil
}

func (s *StepsContext) theTableShouldHaveRows(table string, count int) error {
	var n int
	row := s.tc.RawDB.QueryRow(`SELECT count(*) FROM ` + pq.QuoteIdentifier(table))
	if err := row.Scan(&n); err != nil {
		return err
	}
	if n != count {
		return fmt.Errorf("expected %d rows in %s, got %d", count, table, n)
	}
	return nil
}

func (s *StepsContext) theObjectStoreShouldHoldObjects(count int) error {
	if n := s.server.Objects.Len(); n != count {
		return fmt.Errorf("expected %d stored objects, got %d", count, n)
	}
	return nil
}

func (s *StepsContext) imageOfResponse() (string, error) {
	url := gjson.GetBytes(s.responseBody, "data.0.imagen_url").String()
	if url == "" {
		return "", fmt.Errorf("response has no image: %s", string(s.responseBody))
	}
	return url, nil
}

func (s *StepsContext) iRememberTheImageOfTheResponse() error {
	url, err := s.imageOfResponse()
	if err != nil {
		return err
	}
	s.remembered = url
	return nil
}

func (s *StepsContext) theRememberedImageShouldBeGone() error {
	if s.server.Objects.Has(config.DefaultBucket, s.remembered) {
		return fmt.Errorf("image %s is still stored", s.remembered)
	}
	return nil
}

func (s *StepsContext) theImageOfTheResponseShouldBeStored() error {
	url, err := s.imageOfResponse()
	if err != nil {
		return err
	}
	if !s.server.Objects.Has(config.DefaultBucket, url) {
		return fmt.Errorf("image %s is not stored", url)
	}
	return nil
}
