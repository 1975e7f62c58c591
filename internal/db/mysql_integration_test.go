//go:build integration

package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/kgschema/internal/diff"
)

func TestMySQLExtraction(t *testing.T) {
	ctx := context.Background()

	// Use environment variable if set, otherwise use default test connection string
	connString := os.Getenv("MYSQL_TEST_URL")
	if connString == "" {
		connString = "root:testpassword@tcp(localhost:3306)/testdb"
	}
	dbName, err := DatabaseName(connString)
	require.NoError(t, err)

	client, err := NewMySQLClient(ctx, connString)
	require.NoError(t, err)
	defer client.Close()

	setup := []string{
		"DROP TABLE IF EXISTS `kg_member`",
		"DROP TABLE IF EXISTS `kg_team`",
		"CREATE TABLE `kg_team` (`id` int NOT NULL AUTO_INCREMENT, `title` varchar(80) NOT NULL, PRIMARY KEY (`id`)) ENGINE=InnoDB",
		"CREATE TABLE `kg_member` (" +
			"`id` int NOT NULL AUTO_INCREMENT," +
			"`nick` varchar(30) NOT NULL DEFAULT 'anon'," +
			"`team_id` int NULL," +
			"PRIMARY KEY (`id`)," +
			"UNIQUE KEY `uniq_nick` (`nick`)," +
			"CONSTRAINT `fk_member_team` FOREIGN KEY (`team_id`) REFERENCES `kg_team` (`id`) ON DELETE CASCADE" +
			") ENGINE=InnoDB",
	}
	for _, stmt := range setup {
		_, err := client.GetDB().ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}
	t.Cleanup(func() {
		_, _ = client.GetDB().ExecContext(ctx, "DROP TABLE IF EXISTS `kg_member`")
		_, _ = client.GetDB().ExecContext(ctx, "DROP TABLE IF EXISTS `kg_team`")
	})

	extractor := NewMySQLExtractor(client, dbName, nil)
	s, err := extractor.ExtractSchema(ctx, []string{"kg_team", "kg_member"})
	require.NoError(t, err)
	assert.Equal(t, []string{"kg_team", "kg_member"}, s.TableNames())

	member, ok := s.Table("kg_member")
	require.True(t, ok)
	assert.Equal(t, []string{"id"}, member.PrimaryKey())

	id, _ := member.Column("id")
	assert.True(t, id.IsAutoIncrement)

	nick, _ := member.Column("nick")
	assert.Equal(t, "varchar", nick.Type)
	require.NotNil(t, nick.DefaultValue)
	assert.Equal(t, "anon", *nick.DefaultValue)

	team, _ := member.Column("team_id")
	require.NotNil(t, team.Constraint)
	assert.Equal(t, "fk_member_team", team.Constraint.Name)
	assert.Equal(t, "CASCADE", team.Constraint.OnDelete)

	uniq, ok := member.Index("uniq_nick")
	require.True(t, ok)
	assert.True(t, uniq.IsUnique)

	// a schema read twice never produces statements
	again, err := extractor.ExtractSchema(ctx, []string{"kg_team", "kg_member"})
	require.NoError(t, err)
	assert.True(t, diff.Compute(again, s).IsEmpty())

	assert.Equal(t, []string{"DROP TABLE `kg_member`;"}, diff.Compute(s.Without("kg_member"), s).DropTables)
}
