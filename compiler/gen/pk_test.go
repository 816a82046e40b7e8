package gen

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tesseradb/tessera/compiler/load"
	"github.com/tesseradb/tessera/schema/coltype"
)

// testGenerator wraps programmatically built schemas the way loaded
// packages are wrapped, so emitter tests can render files directly.
func testGenerator(t *testing.T, schemas ...*load.Schema) *Generator {
	t.Helper()
	g, err := NewGenerator(&load.Package{
		Name:    "schema",
		Dir:     t.TempDir(),
		Schemas: schemas,
	}, WithPackage("example.com/app/schema"))
	require.NoError(t, err)
	return g
}

func render(t *testing.T, f fmt.GoStringer) string {
	t.Helper()
	return f.GoString()
}

func accountSchema() *load.Schema {
	return &load.Schema{
		Name: "Account",
		Fields: []*load.Field{
			{Name: "TenantID", Info: strInfo(), Pk: pkIndex(0), Column: "tenant_id"},
			{Name: "AccountID", Info: intInfo(), Pk: pkIndex(1), Column: "account_id"},
			{Name: "Balance", Info: intInfo(), Column: "balance"},
		},
	}
}

func TestGenPkTwoKeys(t *testing.T) {
	require := require.New(t)
	g := testGenerator(t, accountSchema())
	src := render(t, g.genPk(g.Tables[0]))

	// One state per populated prefix, the complete key last.
	require.Contains(src, "type AccountPk struct")
	require.Contains(src, "TenantID string")
	require.Contains(src, "AccountID int64")
	require.Contains(src, "type AccountPk0 struct")
	require.Contains(src, "type AccountPk1 struct")
	require.NotContains(src, "AccountPk2")

	require.Contains(src, "func (Account) EmptyKey() AccountPk0")

	// Exactly one advancement method per non-terminal state, named after
	// the key field it populates.
	require.Contains(src, "func (AccountPk0) TenantID(tenantID string) AccountPk1")
	require.Contains(src, "func NewAccountPkTenantID(tenantID string) AccountPk1")
	require.Contains(src, "func (k AccountPk1) AccountID(accountID int64) AccountPk")

	require.Contains(src, "func (k AccountPk) KeyParts() ([]tessera.Value, error)")
	require.Contains(src, "tessera.EncodeKeyParts(k.TenantID, k.AccountID)")
	require.Contains(src, "func AccountPkFromParts(tenantID string, accountID int64) AccountPk")

	// The prefix contract covers the populated states and the complete
	// key, never the empty prefix.
	require.Contains(src, "func (k AccountPk1) PartialKeyParts() ([]tessera.Value, error)")
	require.Contains(src, "func (k AccountPk) PartialKeyParts() ([]tessera.Value, error)")
	require.NotContains(src, "func (k AccountPk0) PartialKeyParts")

	require.Contains(src, "_ tessera.PrimaryKey = AccountPk{}")
	require.Contains(src, "_ tessera.PartialKey = AccountPk1{}")
}

func TestGenPkKeyOrderOverridesDeclaration(t *testing.T) {
	require := require.New(t)
	g := testGenerator(t, &load.Schema{
		Name: "Event",
		Fields: []*load.Field{
			{Name: "Seq", Info: intInfo(), Pk: pkIndex(1)},
			{Name: "Region", Info: strInfo(), Pk: pkIndex(0)},
		},
	})
	src := render(t, g.genPk(g.Tables[0]))

	require.Contains(src, "func (EventPk0) Region(region string) EventPk1")
	require.Contains(src, "func (k EventPk1) Seq(seq int64) EventPk")
	require.Contains(src, "func EventPkFromParts(region string, seq int64) EventPk")
	require.Contains(src, "tessera.EncodeKeyParts(k.Region, k.Seq)")
}

func TestGenPkSingleKey(t *testing.T) {
	require := require.New(t)
	g := testGenerator(t, &load.Schema{
		Name: "User",
		Fields: []*load.Field{
			{Name: "ID", Info: intInfo(), Pk: pkIndex(0)},
			{Name: "Name", Info: strInfo()},
		},
	})
	src := render(t, g.genPk(g.Tables[0]))

	require.Contains(src, "func (UserPk0) ID(id int64) UserPk")
	require.Contains(src, "func NewUserPkID(id int64) UserPk")
	require.NotContains(src, "UserPk1")
	require.Contains(src, "func UserPkFromParts(id int64) UserPk")
}

func TestGenPkWrapperField(t *testing.T) {
	require := require.New(t)
	g := testGenerator(t, &load.Schema{
		Name: "Shard",
		Fields: []*load.Field{
			{
				Name: "Shard",
				Info: &coltype.TypeInfo{Type: coltype.TypeString, Ident: "ShardID"},
				Pk:   pkIndex(0),
				With: load.Ref{Ident: "RawShard"},
			},
			{Name: "Name", Info: strInfo()},
		},
	})
	src := render(t, g.genPk(g.Tables[0]))

	// The slot holds the wrapper; the advancement method accepts the
	// declared type and converts through the wrapper.
	require.Contains(src, "Shard RawShard")
	require.Contains(src, "func (ShardPk0) Shard(shard ShardID) ShardPk")
	require.Contains(src, "Shard: RawShard(shard)")
	require.Contains(src, "func ShardPkFromParts(shard RawShard) ShardPk")
}

func TestGenPkSerdeFieldKeepsDeclaredType(t *testing.T) {
	require := require.New(t)
	g := testGenerator(t, &load.Schema{
		Name: "Doc",
		Fields: []*load.Field{
			{
				Name:  "Ref",
				Info:  &coltype.TypeInfo{Type: coltype.TypeBytes, Ident: "DocRef"},
				Pk:    pkIndex(0),
				Serde: load.Ref{Ident: "DocRef"},
			},
		},
	})
	src := render(t, g.genPk(g.Tables[0]))

	require.Contains(src, "Ref DocRef")
	require.Contains(src, "func (DocPk0) Ref(ref DocRef) DocPk")
	require.NotContains(src, "DocRef(ref)")
}
