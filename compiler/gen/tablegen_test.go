package gen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tesseradb/tessera/compiler/load"
	"github.com/tesseradb/tessera/schema/coltype"
)

func TestGenTable(t *testing.T) {
	require := require.New(t)
	schema := accountSchema()
	schema.Table = "accounts"
	g := testGenerator(t, schema)
	src := render(t, g.genTable(g.Tables[0]))

	require.Contains(src, "func (Account) TableName() string")
	require.Contains(src, "return account.Table")
	require.Contains(src, "func (Account) TableColumns() []tessera.Column")
	require.Contains(src, "return account.Columns")

	require.Contains(src, "func (a Account) ToRow() (tessera.Row, error)")
	require.Contains(src, "tessera.NewRowBuilder(3)")
	require.Contains(src, "b.AddColumn(a.TenantID)")
	require.Contains(src, "b.AddColumn(a.Balance)")

	require.Contains(src, "func AccountFromRow(r tessera.Row) (Account, error)")
	require.Contains(src, "r.Decode(0, &out.TenantID)")
	require.Contains(src, "r.Decode(2, &out.Balance)")

	require.Contains(src, "func (a Account) IntoPk() AccountPk")
	require.Contains(src, "func (a *Account) Pk() AccountPk")
	require.Contains(src, "AccountPkFromParts(a.TenantID, a.AccountID)")

	require.Contains(src, "_ tessera.Table = Account{}")
}

func TestGenTableWrapperField(t *testing.T) {
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
	src := render(t, g.genTable(g.Tables[0]))

	// Encode converts through the wrapper, decode converts back.
	require.Contains(src, "b.AddColumn(RawShard(s.Shard))")
	require.Contains(src, "var wShard RawShard")
	require.Contains(src, "r.Decode(0, &wShard)")
	require.Contains(src, "out.Shard = ShardID(wShard)")
	require.Contains(src, "ShardPkFromParts(RawShard(s.Shard))")
}

func TestGenTableSerdeField(t *testing.T) {
	require := require.New(t)
	g := testGenerator(t, &load.Schema{
		Name: "Doc",
		Fields: []*load.Field{
			{Name: "ID", Info: intInfo(), Pk: pkIndex(0)},
			{Name: "Meta", Info: &coltype.TypeInfo{Type: coltype.TypeBytes, Ident: "Metadata"}, Serde: load.Ref{Ident: "Metadata"}},
		},
	})
	src := render(t, g.genTable(g.Tables[0]))

	require.Contains(src, "b.SerializeColumn(d.Meta)")
	require.Contains(src, "r.DecodeSerialized(1, &out.Meta)")
}
