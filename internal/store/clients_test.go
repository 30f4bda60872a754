package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"invoicer/internal/backends"
	"invoicer/internal/types"
)

func (s *StoreTestSuite) addClient(name, company string) types.Client {
	c, err := s.clients.Add(context.Background(), types.ClientInput{
		Name:    name,
		Email:   "billing@example.com",
		Company: company,
	})
	s.Require().NoError(err)
	return c
}

func (s *StoreTestSuite) TestClientAdd() {
	s.freezeAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	c, err := s.clients.Add(context.Background(), types.ClientInput{
		Name:    "John Smith",
		Company: "Acme Corporation",
		Address: &types.Address{City: "New York", ZipCode: "10001"},
	})
	s.NoError(err)
	s.NotEmpty(c.ID)
	s.True(c.CreatedAt.Equal(c.UpdatedAt))
	s.Equal("New York", c.Address.City)

	got, ok := s.clients.GetByID(c.ID)
	s.True(ok)
	s.Equal("John Smith", got.Name)

	raw, ok := s.gw.Raw(ClientsKey)
	s.True(ok)
	s.Contains(raw, `"zipCode":"10001"`)
	s.Contains(raw, `"createdAt":"2025-03-01T09:00:00Z"`)
}

func (s *StoreTestSuite) TestClientIDsAreUnique() {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		c := s.addClient("Client", "")
		s.False(seen[c.ID])
		seen[c.ID] = true
	}
}

func (s *StoreTestSuite) TestClientGetByIDReturnsCopy() {
	c, err := s.clients.Add(context.Background(), types.ClientInput{
		Name:    "Sarah Johnson",
		Address: &types.Address{City: "San Francisco"},
	})
	s.Require().NoError(err)

	got, _ := s.clients.GetByID(c.ID)
	got.Name = "changed"
	got.Address.City = "changed"

	again, _ := s.clients.GetByID(c.ID)
	s.Equal("Sarah Johnson", again.Name)
	s.Equal("San Francisco", again.Address.City)
}

func (s *StoreTestSuite) TestClientUpdateKeepsIdentity() {
	advance := s.freezeAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	c := s.addClient("Mike Davis", "Creative Agency")

	advance(time.Hour)
	name := "Michael Davis"
	ok, err := s.clients.Update(context.Background(), c.ID, types.ClientPatch{Name: &name})
	s.NoError(err)
	s.True(ok)

	got, _ := s.clients.GetByID(c.ID)
	s.Equal(c.ID, got.ID)
	s.True(got.CreatedAt.Equal(c.CreatedAt))
	s.True(got.UpdatedAt.After(c.UpdatedAt))
	s.Equal("Michael Davis", got.Name)
	s.Equal("Creative Agency", got.Company)
}

func (s *StoreTestSuite) TestClientUpdateNeverMovesUpdatedAtBack() {
	advance := s.freezeAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	c := s.addClient("Lisa Chen", "Local Restaurant")

	advance(-time.Hour)
	phone := "+1 (555) 321-6547"
	ok, err := s.clients.Update(context.Background(), c.ID, types.ClientPatch{Phone: &phone})
	s.NoError(err)
	s.True(ok)

	got, _ := s.clients.GetByID(c.ID)
	s.False(got.UpdatedAt.Before(c.UpdatedAt))
}

func (s *StoreTestSuite) TestClientMissIsNoOp() {
	s.addClient("John Smith", "Acme Corporation")
	before, _ := s.gw.Raw(ClientsKey)
	writes := s.gw.Writes()

	name := "nobody"
	ok, err := s.clients.Update(context.Background(), "nonexistent", types.ClientPatch{Name: &name})
	s.NoError(err)
	s.False(ok)

	ok, err = s.clients.Delete(context.Background(), "nonexistent")
	s.NoError(err)
	s.False(ok)

	after, _ := s.gw.Raw(ClientsKey)
	s.Equal(before, after)
	s.Equal(writes, s.gw.Writes())
	s.Len(s.clients.List(), 1)
}

func (s *StoreTestSuite) TestClientDelete() {
	a := s.addClient("A", "")
	b := s.addClient("B", "")
	c := s.addClient("C", "")

	ok, err := s.clients.Delete(context.Background(), b.ID)
	s.NoError(err)
	s.True(ok)

	list := s.clients.List()
	s.Len(list, 2)
	s.Equal(a.ID, list[0].ID)
	s.Equal(c.ID, list[1].ID)
	_, found := s.clients.GetByID(b.ID)
	s.False(found)
}

func (s *StoreTestSuite) TestClientSearch() {
	s.addClient("John Smith", "Acme Corporation")
	s.addClient("Sarah Johnson", "Tech Solutions Ltd")
	s.addClient("Mike Davis", "Creative Agency")

	got := s.clients.Search("acme")
	s.Len(got, 1)
	s.Equal("Acme Corporation", got[0].Company)

	s.Len(s.clients.Search("ACME"), 1)
	s.Len(s.clients.Search("john"), 2) // John Smith, Sarah Johnson
	s.Len(s.clients.Search("example.com"), 3)
	s.Empty(s.clients.Search("zzz"))

	all := s.clients.Search("")
	s.Len(all, 3)
	s.Equal("John Smith", all[0].Name)
	s.Equal("Sarah Johnson", all[1].Name)
	s.Equal("Mike Davis", all[2].Name)
	s.Len(s.clients.Search("   "), 3)

	// whitespace only decides blankness, it is still part of the match
	s.Empty(s.clients.Search(" acme"))
	s.Len(s.clients.Search("acme "), 1)
	s.Len(s.clients.Search("john smith"), 1)
}

func (s *StoreTestSuite) TestClientRoundTrip() {
	ctx := context.Background()
	s.freezeAt(time.Date(2025, 3, 1, 9, 30, 15, 123000000, time.FixedZone("EST", -5*3600)))
	var added []types.Client
	for _, n := range []string{"A", "B", "C"} {
		c, err := s.clients.Add(ctx, types.ClientInput{Name: n, TaxID: "T-" + n, Address: &types.Address{Country: "USA"}})
		s.Require().NoError(err)
		added = append(added, c)
	}

	reloaded := NewClientStore(s.gw)
	out, err := reloaded.Load(ctx)
	s.NoError(err)
	s.Equal(types.LoadOK, out.State)
	s.Equal(3, out.Count)

	for i, c := range reloaded.List() {
		s.Equal(added[i].ID, c.ID)
		s.Equal(added[i].Name, c.Name)
		s.Equal(added[i].TaxID, c.TaxID)
		s.Equal(*added[i].Address, *c.Address)
		s.True(added[i].CreatedAt.Equal(c.CreatedAt))
		s.True(added[i].UpdatedAt.Equal(c.UpdatedAt))
	}
}

func (s *StoreTestSuite) TestClientLoadOutcomes() {
	ctx := context.Background()

	out, err := s.clients.Load(ctx)
	s.NoError(err)
	s.Equal(types.LoadEmpty, out.State)
	s.Empty(s.clients.List())

	s.gw.Put(ClientsKey, `[{"id":"c1","name":"Acme","createdAt":"2024-05-01T10:00:00.000Z","updatedAt":"2024-05-02T10:00:00.000Z"}]`)
	out, err = s.clients.Load(ctx)
	s.NoError(err)
	s.Equal(types.LoadOK, out.State)
	c, ok := s.clients.GetByID("c1")
	s.True(ok)
	s.True(c.CreatedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))

	s.gw.Put(ClientsKey, `[{"id":`)
	out, err = s.clients.Load(ctx)
	s.NoError(err)
	s.Equal(types.LoadDegraded, out.State)
	s.True(errors.Is(out.Cause, types.ErrCorruptData))
	s.Empty(s.clients.List())

	boom := errors.New("unreachable")
	s.gw.FailGet = func(string) error { return boom }
	_, err = s.clients.Load(ctx)
	s.Error(err)
	s.True(errors.Is(err, types.ErrGatewayAccess))
	s.True(errors.Is(err, boom))
}

func (s *StoreTestSuite) TestClientUndecodableCompressedBlobDegrades() {
	ctx := context.Background()
	clients := NewClientStore(backends.NewCompressedGateway(s.gw))
	s.gw.Put(ClientsKey, "zstd:!!!not-base64!!!")

	out, err := clients.Load(ctx)
	s.NoError(err)
	s.Equal(types.LoadDegraded, out.State)
	s.True(errors.Is(out.Cause, types.ErrCorruptData))
	s.Empty(clients.List())

	_, err = clients.Add(ctx, types.ClientInput{Name: "Fresh Start"})
	s.NoError(err)
	out, err = NewClientStore(backends.NewCompressedGateway(s.gw)).Load(ctx)
	s.NoError(err)
	s.Equal(types.LoadOK, out.State)
	s.Equal(1, out.Count)
}

func (s *StoreTestSuite) TestClientFailedPersistLeavesState() {
	ctx := context.Background()
	c := s.addClient("John Smith", "Acme Corporation")

	boom := errors.New("disk full")
	s.gw.FailSet = func(string, string) error { return boom }

	added, err := s.clients.Add(ctx, types.ClientInput{Name: "Ghost"})
	s.Error(err)
	s.True(errors.Is(err, types.ErrGatewayAccess))
	s.Empty(added.ID)

	name := "Renamed"
	ok, err := s.clients.Update(ctx, c.ID, types.ClientPatch{Name: &name})
	s.Error(err)
	s.False(ok)

	ok, err = s.clients.Delete(ctx, c.ID)
	s.Error(err)
	s.False(ok)

	list := s.clients.List()
	s.Len(list, 1)
	s.Equal("John Smith", list[0].Name)
}

func (s *StoreTestSuite) TestClientConcurrentAdds() {
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.clients.Add(context.Background(), types.ClientInput{Name: "parallel"})
			s.NoError(err)
		}()
	}
	wg.Wait()
	s.Len(s.clients.List(), n)

	reloaded := NewClientStore(s.gw)
	out, err := reloaded.Load(context.Background())
	s.NoError(err)
	s.Equal(n, out.Count)
}

func (s *StoreTestSuite) TestClientSeedIfEmpty() {
	ctx := context.Background()
	seed := []types.ClientInput{
		{Name: "John Smith", Company: "Acme Corporation"},
		{Name: "Sarah Johnson", Company: "Tech Solutions Ltd"},
	}
	n, err := s.clients.SeedIfEmpty(ctx, seed)
	s.NoError(err)
	s.Equal(2, n)
	s.Equal(1, s.gw.Writes())

	n, err = s.clients.SeedIfEmpty(ctx, seed)
	s.NoError(err)
	s.Equal(0, n)
	s.Equal(2, s.clients.Len())
}
