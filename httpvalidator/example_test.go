package httpvalidator_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/erraggy/oasguard/contract"
	"github.com/erraggy/oasguard/httpvalidator"
	"github.com/erraggy/oasguard/oaserrors"
)

func ExampleNew() {
	// Compile a minimal contract inline for the example
	specYAML := `
openapi: "3.0.0"
info:
  title: Pet Store
  version: "1.0"
paths:
  /pets:
    get:
      responses:
        "200":
          description: Success
`
	doc, err := contract.CompileYAML([]byte(specYAML))
	if err != nil {
		fmt.Println("Compile error:", err)
		return
	}

	// Create a validator
	v, err := httpvalidator.New(doc)
	if err != nil {
		fmt.Println("Validator error:", err)
		return
	}

	// The validator is ready to validate requests and responses
	fmt.Println("Validating against OpenAPI", v.Document().Version)
	// Output: Validating against OpenAPI 3.0.0
}

func ExampleValidator_ValidateRequest() {
	specYAML := `
openapi: "3.0.0"
info:
  title: Pet Store
  version: "1.0"
paths:
  /pets/{petId}:
    get:
      parameters:
        - name: petId
          in: path
          required: true
          schema:
            type: integer
        - name: include
          in: query
          schema:
            type: string
            enum: [owner, vaccinations, all]
      responses:
        "200":
          description: Success
`
	doc, _ := contract.CompileYAML([]byte(specYAML))
	v, _ := httpvalidator.New(doc)

	// Create a test request
	req := httptest.NewRequest("GET", "/pets/123?include=owner", nil)

	// Validate the request
	result, err := v.ValidateRequest(req)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println("Valid:", result.Valid)
	fmt.Println("Matched template:", result.Operation.Template)
	fmt.Println("Pet ID:", result.PathParams["petId"])
	// Output:
	// Valid: true
	// Matched template: /pets/{petId}
	// Pet ID: 123
}

func ExampleValidator_ValidateRequest_invalid() {
	specYAML := `
openapi: "3.0.0"
info:
  title: Pet Store
  version: "1.0"
paths:
  /pets/{petId}:
    get:
      parameters:
        - name: petId
          in: path
          required: true
          schema:
            type: integer
            minimum: 1
      responses:
        "200":
          description: Success
`
	doc, _ := contract.CompileYAML([]byte(specYAML))
	v, _ := httpvalidator.New(doc)

	// Request with an invalid petId (not an integer)
	req := httptest.NewRequest("GET", "/pets/abc", nil)

	result, _ := v.ValidateRequest(req)

	fmt.Println("Valid:", result.Valid)
	if len(result.Errors) > 0 {
		fmt.Println("First error:", result.Errors[0].Message)
	}
	// Output:
	// Valid: false
	// First error: expected type integer but got string
}

func ExampleValidator_ValidateRequest_noMatch() {
	specYAML := `
openapi: "3.0.0"
info:
  title: Pet Store
  version: "1.0"
paths:
  /pets:
    get:
      responses:
        "200":
          description: Success
`
	doc, _ := contract.CompileYAML([]byte(specYAML))
	v, _ := httpvalidator.New(doc)

	// Request for a path the contract never declares
	req := httptest.NewRequest("DELETE", "/unknown", nil)

	_, err := v.ValidateRequest(req)
	if errors.Is(err, oaserrors.ErrNoMatch) {
		fmt.Println("Unmatched:", err)
	}
	// Output: Unmatched: no matching path template for DELETE /unknown
}

func ExampleValidator_ValidateResponse() {
	specYAML := `
openapi: "3.0.0"
info:
  title: Pet Store
  version: "1.0"
paths:
  /pets/{petId}:
    get:
      responses:
        "200":
          description: Success
          content:
            application/json:
              schema:
                type: object
                required: [id, name]
                properties:
                  id:
                    type: integer
                  name:
                    type: string
`
	doc, _ := contract.CompileYAML([]byte(specYAML))
	v, _ := httpvalidator.New(doc)

	// Original request
	req := httptest.NewRequest("GET", "/pets/123", nil)

	// Captured response data (simulating middleware capture)
	header := http.Header{"Content-Type": []string{"application/json"}}
	body := []byte(`{"id": 123, "name": "Fluffy"}`)

	// Validate the response
	result, _ := v.ValidateResponse(req, 200, header, body)

	fmt.Println("Valid:", result.Valid)
	fmt.Println("Selector:", result.Selector)
	// Output:
	// Valid: true
	// Selector: 200
}

func ExampleValidator_ValidateRequest_requestBody() {
	specYAML := `
openapi: "3.0.0"
info:
  title: API
  version: "1.0"
paths:
  /users:
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [email]
              properties:
                email:
                  type: string
                  format: email
      responses:
        "201":
          description: Created
`
	doc, _ := contract.CompileYAML([]byte(specYAML))
	v, _ := httpvalidator.New(doc)

	// Create a request with a JSON body
	body := strings.NewReader(`{"email": "user@example.com"}`)
	req := httptest.NewRequest("POST", "/users", body)
	req.Header.Set("Content-Type", "application/json")

	result, _ := v.ValidateRequest(req)

	fmt.Println("Valid:", result.Valid)
	fmt.Println("Email:", result.Body.(map[string]any)["email"])
	// Output:
	// Valid: true
	// Email: user@example.com
}

func ExampleWithStrictParameters() {
	specYAML := `
openapi: "3.0.0"
info:
  title: API
  version: "1.0"
paths:
  /search:
    get:
      parameters:
        - name: q
          in: query
          required: true
          schema:
            type: string
      responses:
        "200":
          description: Success
`
	doc, _ := contract.CompileYAML([]byte(specYAML))

	// Strict mode reports query parameters the contract never declares
	v, _ := httpvalidator.New(doc, httpvalidator.WithStrictParameters())

	req := httptest.NewRequest("GET", "/search?q=cats&debug=1", nil)

	result, _ := v.ValidateRequest(req)

	fmt.Println("Valid:", result.Valid)
	fmt.Println("First error:", result.Errors[0].Message)
	// Output:
	// Valid: false
	// First error: query parameter "debug" is not declared
}
