package employee

import (
	"testing"

	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/query"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalize(t *testing.T) {
	e := Normalize(RawEmployee{
		LegacyID:  "65a1",
		Username:  "alice",
		Role:      "Admin",
		Email:     strPtr("  "),
		CreatedAt: "2024-01-15T08:30:00",
	})

	assert.Equal(t, "65a1", e.ID)
	assert.Equal(t, RoleAdmin, e.Role)
	assert.Nil(t, e.Email)
	assert.Equal(t, "2024/01/15", e.CreatedAtDisplay)
	assert.Equal(t, "alice", e.DisplayName())

	e = Normalize(RawEmployee{ID: "u2", Role: "manager", CreatedAt: "yesterday"})
	assert.Equal(t, RoleUser, e.Role)
	assert.Equal(t, "未知日期", e.CreatedAtDisplay)
}

func TestDirectory_NameOf(t *testing.T) {
	dir := NewDirectory([]Employee{
		{ID: "u1", Name: "Alice", Username: "alice"},
		{ID: "u2", Username: "bob"},
		{Username: "ghost"},
	})

	assert.Equal(t, "Alice", dir.NameOf("u1"))
	assert.Equal(t, "bob", dir.NameOf("u2"))
	assert.Equal(t, "用戶u9", dir.NameOf("u9"))
	assert.Len(t, dir, 2)
}

func TestApply(t *testing.T) {
	roster := []Employee{
		{ID: "1", Name: "Carol", Username: "carol", Role: RoleUser, CreatedAt: "2024-01-03"},
		{ID: "2", Name: "alice", Username: "ali", Role: RoleAdmin, CreatedAt: "2024-01-01", Email: strPtr("ali@corp.io")},
		{ID: "3", Name: "Bob", Username: "bobby", Role: RoleUser, CreatedAt: "2024-01-02"},
	}

	got := Apply(roster, DefaultSearch())
	require.Len(t, got, 3)
	assert.Equal(t, []string{"2", "3", "1"}, ids(got))

	got = Apply(roster, SearchSpec{Search: "CORP", Role: query.All})
	assert.Equal(t, []string{"2"}, ids(got))

	got = Apply(roster, SearchSpec{Role: string(RoleUser), SortBy: "created_at", SortOrder: query.Desc})
	assert.Equal(t, []string{"1", "3"}, ids(got))

	// the input is never reordered
	assert.Equal(t, []string{"1", "2", "3"}, ids(roster))
}

func TestAggregate(t *testing.T) {
	stats := Aggregate([]Employee{{Role: RoleAdmin}, {Role: RoleUser}, {Role: RoleUser}})
	assert.Equal(t, Stats{TotalUsers: 3, AdminUsers: 1, RegularUsers: 2}, stats)
	assert.Equal(t, Stats{}, Aggregate(nil))
}

func TestCreateEmployeeRequest_Validate(t *testing.T) {
	req := CreateEmployeeRequest{Username: "ab", Password: "123", Email: strPtr("nope")}
	err := req.Validate()
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, map[string]string{
		"username": "username must be 3-50 characters of letters, digits, underscore or hyphen",
		"password": "password must be 6-100 characters",
		"name":     "name is required",
		"email":    "email must be a valid email address",
	}, verrs.ToMap())

	req = CreateEmployeeRequest{Username: "new_user", Password: "secret1", Name: "New"}
	require.NoError(t, req.Validate())
	assert.Equal(t, RoleUser, req.Role)
}

func TestSearchPatch_Validate(t *testing.T) {
	assert.Error(t, (&SearchPatch{SortBy: strPtr("salary")}).Validate())
	assert.Error(t, (&SearchPatch{Role: strPtr("owner")}).Validate())
	assert.NoError(t, (&SearchPatch{Role: strPtr(query.All), SortBy: strPtr("username")}).Validate())
}

func ids(es []Employee) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}
