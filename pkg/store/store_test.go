package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/sbomlens/pkg/analysis"
)

func TestStoreReplace(t *testing.T) {
	s := New()
	assert.Nil(t, s.Current())

	first := &analysis.Snapshot{ID: "first"}
	assert.Nil(t, s.Replace(first))
	assert.Same(t, first, s.Current())

	second := &analysis.Snapshot{ID: "second"}
	assert.Same(t, first, s.Replace(second))
	assert.Same(t, second, s.Current())

	s.Clear()
	assert.Nil(t, s.Current())
}

func TestStoreZeroValue(t *testing.T) {
	var s Store
	assert.Nil(t, s.Current())
	s.Replace(&analysis.Snapshot{ID: "x"})
	assert.Equal(t, "x", s.Current().ID)
}

func TestStoreConcurrent(t *testing.T) {
	s := New()
	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Replace(&analysis.Snapshot{ID: fmt.Sprint(i), FileName: fmt.Sprint(i)})
		}()
		go func() {
			defer wg.Done()
			if snap := s.Current(); snap != nil {
				assert.Equal(t, snap.ID, snap.FileName, "reader saw a partial snapshot")
			}
		}()
	}
	wg.Wait()
	assert.NotNil(t, s.Current())
}
