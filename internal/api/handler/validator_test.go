package handler

import "testing"

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name string
		req  any
		want string
	}{
		{"missing title", &createTaskRequest{}, "title is required"},
		{"bad due date", &createTaskRequest{Title: "T1", DueDate: "next week"}, "dueDate must be an RFC 3339 timestamp or YYYY-MM-DD date"},
		{"bad due date on update", &updateTaskRequest{DueDate: "04/03/2025"}, "dueDate must be an RFC 3339 timestamp or YYYY-MM-DD date"},
		{"unknown role", &registerRequest{Username: "a", Email: "a@example.com", Password: "pw", Role: "owner"}, "role must be one of: admin, manager, user"},
		{"bad email", &registerRequest{Username: "a", Email: "nope", Password: "pw"}, "email must be a valid email"},
		{"several fields", &loginRequest{}, "email is required; password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if err.Error() != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestValidator_AcceptsValidRequests(t *testing.T) {
	v := NewValidator()

	for _, req := range []any{
		&createTaskRequest{Title: "T1"},
		&createTaskRequest{Title: "T1", DueDate: "2025-01-10"},
		&createTaskRequest{Title: "T1", DueDate: " 2025-01-10T09:30:00Z "},
		&updateTaskRequest{},
		&registerRequest{Username: "a", Email: "a@example.com", Password: "pw"},
		&registerRequest{Username: "a", Email: "a@example.com", Password: "pw", Role: "manager"},
	} {
		if err := v.Validate(req); err != nil {
			t.Errorf("%+v: unexpected error %v", req, err)
		}
	}
}
