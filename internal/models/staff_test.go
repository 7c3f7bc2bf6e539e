package models

import "testing"

func TestStaffCreateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     StaffCreateRequest
		wantErr bool
	}{
		{
			name: "valid admin",
			req: StaffCreateRequest{
				Email:    "admin@pycon.gm",
				Password: "correct-horse-battery",
				FullName: "Awa Sanneh",
				Role:     StaffRoleAdmin,
			},
			wantErr: false,
		},
		{
			name: "short password",
			req: StaffCreateRequest{
				Email:    "admin@pycon.gm",
				Password: "short",
				FullName: "Awa Sanneh",
				Role:     StaffRoleAdmin,
			},
			wantErr: true,
		},
		{
			name: "invalid email",
			req: StaffCreateRequest{
				Email:    "not-an-email",
				Password: "correct-horse-battery",
				FullName: "Awa Sanneh",
				Role:     StaffRoleFrontdesk,
			},
			wantErr: true,
		},
		{
			name: "unknown role",
			req: StaffCreateRequest{
				Email:    "admin@pycon.gm",
				Password: "correct-horse-battery",
				FullName: "Awa Sanneh",
				Role:     "superuser",
			},
			wantErr: true,
		},
		{
			name: "missing full name",
			req: StaffCreateRequest{
				Email:    "admin@pycon.gm",
				Password: "correct-horse-battery",
				FullName: " ",
				Role:     StaffRoleSecurity,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	if !(&Staff{Role: StaffRoleAdmin}).IsAdmin() {
		t.Error("admin role must report IsAdmin")
	}
	if (&Staff{Role: StaffRoleFrontdesk}).IsAdmin() {
		t.Error("frontdesk role must not report IsAdmin")
	}
}
