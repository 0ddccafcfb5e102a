package appdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	db "github.com/tendermint/tm-db"
)

func TestAppDB(t *testing.T) {
	t.Parallel()

	memDB := db.NewMemDB()
	appDB := NewAppDBWithDB(memDB)

	assert.Nil(t, appDB.GetLastHash())
	assert.Equal(t, uint64(0), appDB.GetLastHeight())

	appDB.SetLastHash([]byte{1, 2, 3})
	appDB.SetLastHeight(42)
	appDB.SetStartHeight(7)
	appDB.SetLastTime(1650000000)
	appDB.AddVersion("v1.0.0", 1)
	appDB.AddVersion("v1.0.0", 5)
	appDB.AddVersion("v1.1.0", 10)
	appDB.SaveVersions()

	reloaded := NewAppDBWithDB(memDB)
	assert.Equal(t, []byte{1, 2, 3}, reloaded.GetLastHash())
	assert.Equal(t, uint64(42), reloaded.GetLastHeight())
	assert.Equal(t, uint64(7), reloaded.GetStartHeight())
	assert.Equal(t, uint64(1650000000), reloaded.GetLastTime())

	versions := reloaded.GetVersions()
	if assert.Len(t, versions, 2) {
		assert.Equal(t, "v1.1.0", versions[1].Name)
		assert.Equal(t, uint64(10), versions[1].Height)
	}
}
