package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"usermgmt/internal/person/models"
	"usermgmt/pkg/domain"
	"usermgmt/pkg/platform/sentinel"
)

type PersonStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *PersonStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestPersonStoreSuite(t *testing.T) {
	suite.Run(t, new(PersonStoreSuite))
}

func (s *PersonStoreSuite) draft(name string) models.Draft {
	return models.Draft{
		Name:      name,
		BirthDate: domain.NewDate(1990, time.January, 1),
		Salary:    domain.MustMoney("1000.00"),
	}
}

func (s *PersonStoreSuite) create(name string) models.Person {
	p, err := s.store.Create(s.ctx, s.draft(name))
	s.Require().NoError(err)
	return p
}

func (s *PersonStoreSuite) names() []string {
	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.Name
	}
	return names
}

func (s *PersonStoreSuite) TestCreate() {
	s.Run("mints distinct non-empty ids", func() {
		a := s.create("A")
		b := s.create("B")
		s.NotEmpty(a.ID)
		s.NotEqual(a.ID, b.ID)
	})

	s.Run("returns the stored fields", func() {
		p := s.create("Alice")
		found, err := s.store.Get(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal("Alice", found.Name)
		s.True(found.Salary.Equal(domain.MustMoney("1000")))
	})

	s.Run("retries when the generator repeats", func() {
		ids := []string{"dup", "dup", "fresh"}
		st := NewInMemory(WithIDGenerator(func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}))
		first, err := st.Create(s.ctx, s.draft("A"))
		s.Require().NoError(err)
		second, err := st.Create(s.ctx, s.draft("B"))
		s.Require().NoError(err)
		s.Equal("dup", first.ID)
		s.Equal("fresh", second.ID)
	})

	s.Run("fails when no unique id can be minted", func() {
		st := NewInMemory(WithIDGenerator(func() string { return "same" }))
		_, err := st.Create(s.ctx, s.draft("A"))
		s.Require().NoError(err)
		_, err = st.Create(s.ctx, s.draft("B"))
		s.Require().Error(err)
		count, _ := st.Count(s.ctx)
		s.Equal(1, count)
	})
}

func (s *PersonStoreSuite) TestListOrder() {
	s.Run("empty store lists nothing", func() {
		all, err := NewInMemory().List(s.ctx)
		s.Require().NoError(err)
		s.NotNil(all)
		s.Empty(all)
	})

	s.Run("insertion order survives updates and deletes", func() {
		a := s.create("A")
		b := s.create("B")
		c := s.create("C")
		d := s.create("D")

		_, err := s.store.Update(s.ctx, b.ID, s.draft("B2"))
		s.Require().NoError(err)
		s.Require().NoError(s.store.Delete(s.ctx, c.ID))
		e := s.create("E")

		s.Equal([]string{"A", "B2", "D", "E"}, s.names())

		// lookups still resolve after the tail was reindexed
		for _, id := range []string{a.ID, d.ID, e.ID} {
			_, err := s.store.Get(s.ctx, id)
			s.NoError(err)
		}
	})

	s.Run("snapshot is detached from the store", func() {
		st := NewInMemory()
		p, err := st.Create(s.ctx, s.draft("A"))
		s.Require().NoError(err)
		snap, _ := st.List(s.ctx)
		snap[0].Name = "mutated"

		found, _ := st.Get(s.ctx, p.ID)
		s.Equal("A", found.Name)
	})
}

func (s *PersonStoreSuite) TestUpdate() {
	s.Run("replaces mutable fields and keeps id", func() {
		p := s.create("Alice")
		patch := models.Draft{
			Name:      "Alicia",
			BirthDate: domain.NewDate(1991, time.February, 2),
			Salary:    domain.MustMoney("1200.00"),
		}
		updated, err := s.store.Update(s.ctx, p.ID, patch)
		s.Require().NoError(err)
		s.Equal(p.ID, updated.ID)
		s.Equal("Alicia", updated.Name)
		s.True(updated.BirthDate.Equal(domain.NewDate(1991, time.February, 2)))
		s.True(updated.Salary.Equal(domain.MustMoney("1200")))
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.Update(s.ctx, "missing", s.draft("X"))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PersonStoreSuite) TestDelete() {
	s.Run("removes exactly one record", func() {
		st := NewInMemory()
		a, _ := st.Create(s.ctx, s.draft("A"))
		_, _ = st.Create(s.ctx, s.draft("B"))

		s.Require().NoError(st.Delete(s.ctx, a.ID))
		count, _ := st.Count(s.ctx)
		s.Equal(1, count)

		_, err := st.Update(s.ctx, a.ID, s.draft("again"))
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.ErrorIs(st.Delete(s.ctx, a.ID), sentinel.ErrNotFound)
	})
}

func (s *PersonStoreSuite) TestConcurrentCreates() {
	const n = 200
	st := NewInMemory()

	var wg sync.WaitGroup
	ids := make([]string, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := st.Create(s.ctx, s.draft(fmt.Sprintf("p%d", i)))
			if err == nil {
				ids[i] = p.ID
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, id := range ids {
		s.Require().NotEmpty(id)
		seen[id] = struct{}{}
	}
	s.Len(seen, n)
	count, _ := st.Count(s.ctx)
	s.Equal(n, count)
}

func (s *PersonStoreSuite) TestConcurrentMixedOperations() {
	st := NewInMemory()
	seed := make([]models.Person, 50)
	for i := range seed {
		seed[i], _ = st.Create(s.ctx, s.draft(fmt.Sprintf("seed%d", i)))
	}

	var wg sync.WaitGroup
	for i, p := range seed {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_ = st.Delete(s.ctx, p.ID)
			} else {
				_, _ = st.Update(s.ctx, p.ID, s.draft("updated"))
			}
		}()
		go func() {
			defer wg.Done()
			_, _ = st.Create(s.ctx, s.draft("new"))
			_, _ = st.List(s.ctx)
		}()
	}
	wg.Wait()

	all, _ := st.List(s.ctx)
	s.Len(all, 75)
	for _, p := range all {
		found, err := st.Get(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(p.ID, found.ID)
	}
}
