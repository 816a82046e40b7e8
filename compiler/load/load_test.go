package load

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tesseradb/tessera/schema/coltype"
)

func TestParseSource(t *testing.T) {
	require := require.New(t)
	src := `package app

import (
	"time"

	"github.com/google/uuid"
)

type ShardID string

type RawShard string

type Metadata struct{ Tags []string }

//tessera:table table=accounts pk_type=AcctKey column_module=acctcols
type Account struct {
	TenantID  string    ` + "`tessera:\"pk=0,rename=tenant_id\"`" + `
	AccountID int64     ` + "`tessera:\"pk=1\"`" + `
	Shard     ShardID   ` + "`tessera:\"with=RawShard\"`" + `
	Meta      Metadata  ` + "`tessera:\"serde=Metadata\"`" + `
	Owner     uuid.UUID
	Note      *string
	CreatedAt time.Time ` + "`tessera:\"nullable\"`" + `
	Internal  int       ` + "`tessera:\"-\"`" + `
}
`
	pkg, err := ParseSource("schema.go", []byte(src))
	require.NoError(err)
	require.Equal("app", pkg.Name)
	require.Len(pkg.Schemas, 1)

	s := pkg.Schemas[0]
	require.Equal("Account", s.Name)
	require.Equal("accounts", s.TableName())
	require.Equal("AcctKey", s.PkType)
	require.Equal("acctcols", s.ColumnModule)
	require.Len(s.Fields, 7)

	tenant := s.Fields[0]
	require.Equal("TenantID", tenant.Name)
	require.Equal("tenant_id", tenant.ColumnName())
	require.NotNil(tenant.Pk)
	require.Equal(0, *tenant.Pk)
	require.Equal(coltype.TypeString, tenant.Info.Type)

	shard := s.Fields[2]
	require.Equal(Ref{Ident: "RawShard"}, shard.With)
	// Package-local named types resolve to their underlying storage class.
	require.Equal(coltype.TypeString, shard.Info.Type)
	require.Equal("ShardID", shard.Info.Ident)

	meta := s.Fields[3]
	require.Equal(Ref{Ident: "Metadata"}, meta.Serde)
	require.Equal(coltype.TypeBytes, meta.Info.Type)

	owner := s.Fields[4]
	require.Equal(coltype.TypeUUID, owner.Info.Type)
	require.Equal("github.com/google/uuid", owner.Info.PkgPath)

	note := s.Fields[5]
	require.True(note.Info.Nillable)
	require.True(note.Nullable)

	created := s.Fields[6]
	require.Equal(coltype.TypeTime, created.Info.Type)
	require.Equal("time", created.Info.PkgPath)
	require.True(created.Nullable)
}

func TestParseSourceDefaults(t *testing.T) {
	require := require.New(t)
	src := `package app

//tessera:table
type UserProfile struct {
	ID int64 ` + "`tessera:\"pk=0\"`" + `
}
`
	pkg, err := ParseSource("schema.go", []byte(src))
	require.NoError(err)
	s := pkg.Schemas[0]
	require.Equal("UserProfile", s.TableName())
	require.Equal("UserProfilePk", s.PkType)
	require.Equal("user_profile", s.ColumnModule)
}

func TestParseSourceDirectiveOnDecl(t *testing.T) {
	require := require.New(t)
	src := `package app

//tessera:table
type (
	User struct {
		ID int64 ` + "`tessera:\"pk=0\"`" + `
	}
)
`
	pkg, err := ParseSource("schema.go", []byte(src))
	require.NoError(err)
	require.Len(pkg.Schemas, 1)
	require.Equal("User", pkg.Schemas[0].Name)
}

func TestParseSourceIgnoresUnannotated(t *testing.T) {
	src := `package app

type Plain struct {
	ID int64
}

// tessera:tablecloth is not the directive.
type Other struct{}
`
	pkg, err := ParseSource("schema.go", []byte(src))
	require.NoError(t, err)
	require.Empty(t, pkg.Schemas)
}

func TestParseSourceNonStruct(t *testing.T) {
	src := `package app

//tessera:table
type Alias = int64
`
	_, err := ParseSource("schema.go", []byte(src))
	require.ErrorContains(t, err, "unsupported shape: Alias is not a struct with named fields")
}

func TestParseSourceEmbeddedField(t *testing.T) {
	src := `package app

type Base struct{}

//tessera:table
type Derived struct {
	Base
	ID int64 ` + "`tessera:\"pk=0\"`" + `
}
`
	_, err := ParseSource("schema.go", []byte(src))
	require.ErrorContains(t, err, "Derived has embedded fields")
}

func TestParseSourceCapturesTypeParams(t *testing.T) {
	require := require.New(t)
	src := `package app

//tessera:table
type Box[T any] struct {
	ID int64 ` + "`tessera:\"pk=0\"`" + `
}
`
	pkg, err := ParseSource("schema.go", []byte(src))
	require.NoError(err)
	require.Equal([]string{"T"}, pkg.Schemas[0].TypeParams)
}

func TestParseSourceTagErrors(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want string
	}{
		{"unknown option", `tessera:"pk=0,frobnicate"`, `unknown option "frobnicate"`},
		{"pk without index", `tessera:"pk"`, "pk option requires an index"},
		{"negative pk", `tessera:"pk=-1"`, "must be a non-negative integer"},
		{"with and serde", `tessera:"with=A,serde=B"`, "only one of 'with' and 'serde' are supported, not both"},
		{"unknown package", `tessera:"with=ext.Raw"`, `references unknown package "ext"`},
		{"nullable with value", `tessera:"nullable=yes"`, "nullable option takes no value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `package app

//tessera:table
type Bad struct {
	ID int64 ` + "`" + tt.tag + "`" + `
}
`
			_, err := ParseSource("schema.go", []byte(src))
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParseSourceBadDirective(t *testing.T) {
	src := `package app

//tessera:table sharding=hash
type User struct {
	ID int64 ` + "`tessera:\"pk=0\"`" + `
}
`
	_, err := ParseSource("schema.go", []byte(src))
	require.ErrorContains(t, err, `unknown directive option "sharding"`)
}

func TestParseDir(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	write := func(name, src string) {
		require.NoError(os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	write("user.go", `package app

//tessera:table
type User struct {
	ID int64 `+"`tessera:\"pk=0\"`"+`
}
`)
	write("group.go", `package app

//tessera:table
type Group struct {
	ID int64 `+"`tessera:\"pk=0\"`"+`
}
`)
	write("user_gen.go", `// Code generated by tessera. DO NOT EDIT.

package app

//tessera:table
type Ghost struct {
	ID int64 `+"`tessera:\"pk=0\"`"+`
}
`)
	write("user_test.go", `package app

//tessera:table
type TestOnly struct {
	ID int64 `+"`tessera:\"pk=0\"`"+`
}
`)

	pkg, err := ParseDir(dir)
	require.NoError(err)
	require.Equal("app", pkg.Name)
	require.Equal(dir, pkg.Dir)

	// Generated and test files are skipped; files load in name order.
	require.Len(pkg.Schemas, 2)
	require.Equal("Group", pkg.Schemas[0].Name)
	require.Equal("User", pkg.Schemas[1].Name)
}

func TestParseDirMultiplePackages(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	require.NoError(os.WriteFile(filepath.Join(dir, "a.go"), []byte("package app\n"), 0o644))
	require.NoError(os.WriteFile(filepath.Join(dir, "b.go"), []byte("package other\n"), 0o644))

	_, err := ParseDir(dir)
	require.ErrorContains(err, "multiple packages (app, other)")
}

func TestUnderlyingCycle(t *testing.T) {
	require := require.New(t)
	src := `package app

type A B

type B A

//tessera:table
type Rec struct {
	V A ` + "`tessera:\"pk=0\"`" + `
}
`
	pkg, err := ParseSource("schema.go", []byte(src))
	require.NoError(err)
	// A cyclic declaration never reaches a builtin; the field falls back
	// to the bytes storage class.
	require.Equal(coltype.TypeBytes, pkg.Schemas[0].Fields[0].Info.Type)
}
