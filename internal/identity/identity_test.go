package identity

import (
	"testing"

	"parcelhub/pkg/errors"
	"parcelhub/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromClaimsTenantEmployee(t *testing.T) {
	actor, err := FromClaims(&jwt.JWTClaims{
		UserID:    7,
		Username:  "zhangsan",
		ActorKind: KindTenantEmployee,
		TenantID:  3,
		Roles:     []string{"TENANT_ADMIN", "DISPATCHER"},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), actor.UserID)
	assert.Equal(t, uint(3), actor.TenantID)
	assert.True(t, actor.IsTenantEmployee())
	assert.True(t, actor.HasRole("DISPATCHER"))
	assert.False(t, actor.HasRole("COURIER"))
}

// actor-kind = TENANT_EMPLOYEE 当且仅当租户ID存在，其余组合一律拒绝
func TestFromClaimsKindTenantConsistency(t *testing.T) {
	cases := []struct {
		name     string
		kind     string
		tenantID uint
		wantErr  bool
	}{
		{"员工带租户", KindTenantEmployee, 1, false},
		{"员工缺租户", KindTenantEmployee, 0, true},
		{"客户无租户", KindCustomer, 0, false},
		{"客户带租户", KindCustomer, 5, true},
		{"平台管理员无租户", KindPlatformAdmin, 0, false},
		{"平台管理员带租户", KindPlatformAdmin, 5, true},
		{"缺少kind", "", 0, true},
		{"未知kind", "SUPERVISOR", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromClaims(&jwt.JWTClaims{
				UserID:    1,
				ActorKind: tc.kind,
				TenantID:  tc.tenantID,
			})
			if tc.wantErr {
				var malformed *errors.MalformedIdentityError
				require.Error(t, err)
				assert.ErrorAs(t, err, &malformed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromClaimsNil(t *testing.T) {
	_, err := FromClaims(nil)
	require.Error(t, err)
}

// 构建出的Actor持有角色列表的副本，修改原声明不影响Actor
func TestFromClaimsCopiesRoles(t *testing.T) {
	claims := &jwt.JWTClaims{
		UserID:    1,
		ActorKind: KindPlatformAdmin,
		Roles:     []string{"PLATFORM_ADMIN"},
	}
	actor, err := FromClaims(claims)
	require.NoError(t, err)

	claims.Roles[0] = "MUTATED"
	assert.True(t, actor.HasRole("PLATFORM_ADMIN"))
}

func TestValidKind(t *testing.T) {
	assert.True(t, ValidKind(KindCustomer))
	assert.True(t, ValidKind(KindTenantEmployee))
	assert.True(t, ValidKind(KindPlatformAdmin))
	assert.False(t, ValidKind("ADMIN"))
	assert.False(t, ValidKind(""))
}
