package gen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tesseradb/tessera/compiler/load"
	"github.com/tesseradb/tessera/schema/coltype"
)

func TestGenColumns(t *testing.T) {
	require := require.New(t)
	schema := accountSchema()
	schema.Table = "accounts"
	g := testGenerator(t, schema)
	src := render(t, g.genColumns(g.Tables[0]))

	require.Contains(src, "package account")
	require.Contains(src, `const Table = "accounts"`)

	require.Contains(src, "var TenantID = tessera.Column{")
	require.Contains(src, `"tenant_id"`)
	require.Contains(src, "coltype.TypeString")
	require.Contains(src, "var AccountID = tessera.Column{")
	require.Contains(src, "var Balance = tessera.Column{")

	require.Contains(src, "var Columns = []tessera.Column{")
	require.Contains(src, "TenantID,")
	require.Contains(src, "Balance,")
}

func TestGenColumnsNullableAndSerde(t *testing.T) {
	require := require.New(t)
	g := testGenerator(t, &load.Schema{
		Name: "Doc",
		Fields: []*load.Field{
			{Name: "ID", Info: intInfo(), Pk: pkIndex(0)},
			{Name: "Note", Info: &coltype.TypeInfo{Type: coltype.TypeString, Ident: "*string", Nillable: true}, Nullable: true},
			{Name: "Meta", Info: &coltype.TypeInfo{Type: coltype.TypeBytes, Ident: "Metadata"}, Serde: load.Ref{Ident: "Metadata"}},
		},
	})
	src := render(t, g.genColumns(g.Tables[0]))

	require.Contains(src, "Nullable: true")
	// Serialized columns store bytes regardless of the declared type.
	require.Contains(src, "var Meta = tessera.Column{")
	require.Contains(src, "coltype.TypeBytes")
}
