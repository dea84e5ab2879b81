package marketplace

import (
	"context"
	"testing"
	"time"

	"servswap/database/repository/memrepo"
	"servswap/models"
	"servswap/services/apperr"
	"servswap/services/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	folders []string
	deleted []string
}

func (f *fakeStorage) UploadImage(_ context.Context, localPath, folder string, _ storage.Transform) (string, error) {
	f.folders = append(f.folders, folder)
	return "https://img.example.com/" + folder + "/x.jpg", nil
}

func (f *fakeStorage) DeleteFile(_ context.Context, fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

func newService(users ...models.User) (*DefaultMarketplaceService, *memrepo.Services, *memrepo.Swaps) {
	services := memrepo.NewServices()
	swaps := memrepo.NewSwaps()
	return &DefaultMarketplaceService{
		Services: services,
		Swaps:    swaps,
		Users:    memrepo.NewUsers(users...),
		Storage:  &fakeStorage{},
	}, services, swaps
}

func premium() models.Subscription {
	return models.Subscription{Plan: models.PlanPremium, Status: "active", CurrentPeriodEnd: time.Now().Add(24 * time.Hour)}
}

func validRequest(title string) models.CreateServiceRequest {
	return models.CreateServiceRequest{
		Title:          title,
		Description:    "Weekly lessons",
		Category:       " Tutoring ",
		Tags:           []string{"Math", "math", " physics "},
		EstimatedHours: 2,
	}
}

func TestCreateServiceNormalizes(t *testing.T) {
	svc, _, _ := newService(models.User{ID: "u1"})

	got, err := svc.CreateService(context.Background(), "u1", validRequest("  Algebra help  "))
	require.NoError(t, err)
	assert.Equal(t, "Algebra help", got.Title)
	assert.Equal(t, "tutoring", got.Category)
	assert.Equal(t, []string{"math", "physics"}, got.Tags)
	assert.True(t, got.Active)
	assert.Equal(t, "u1", got.OwnerID)
}

func TestCreateServiceValidation(t *testing.T) {
	svc, _, _ := newService(models.User{ID: "u1"})
	ctx := context.Background()

	cases := map[string]models.CreateServiceRequest{
		"short title":    {Title: "ab", Category: "design", EstimatedHours: 1},
		"bad category":   {Title: "Logo work", Category: "astrology", EstimatedHours: 1},
		"zero hours":     {Title: "Logo work", Category: "design"},
		"too many hours": {Title: "Logo work", Category: "design", EstimatedHours: 101},
		"too many tags": {Title: "Logo work", Category: "design", EstimatedHours: 1,
			Tags: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateService(ctx, "u1", req)
			assert.True(t, apperr.Is(err, apperr.KindInvalid), "got %v", err)
		})
	}
}

func TestFreeListingLimit(t *testing.T) {
	svc, _, _ := newService(models.User{ID: "free"}, models.User{ID: "pro", Subscription: premium()})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateService(ctx, "free", validRequest("Lesson plan"))
		require.NoError(t, err)
	}
	_, err := svc.CreateService(ctx, "free", validRequest("Lesson plan"))
	assert.True(t, apperr.Is(err, apperr.KindLimitReached))

	for i := 0; i < 4; i++ {
		_, err := svc.CreateService(ctx, "pro", validRequest("Lesson plan"))
		require.NoError(t, err)
	}
}

func TestReactivationCountsAgainstLimit(t *testing.T) {
	svc, _, _ := newService(models.User{ID: "u1"})
	ctx := context.Background()

	first, err := svc.CreateService(ctx, "u1", validRequest("First one"))
	require.NoError(t, err)
	off := false
	_, err = svc.UpdateService(ctx, "u1", first.ID, models.UpdateServiceRequest{Active: &off})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateService(ctx, "u1", validRequest("Another one"))
		require.NoError(t, err)
	}

	on := true
	_, err = svc.UpdateService(ctx, "u1", first.ID, models.UpdateServiceRequest{Active: &on})
	assert.True(t, apperr.Is(err, apperr.KindLimitReached))
}

func TestSuspendedOwnerCannotList(t *testing.T) {
	svc, _, _ := newService(models.User{ID: "u1", Suspended: true})
	_, err := svc.CreateService(context.Background(), "u1", validRequest("Guitar lessons"))
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestUpdateServiceOwnerOnly(t *testing.T) {
	svc, _, _ := newService(models.User{ID: "u1"}, models.User{ID: "u2"})
	ctx := context.Background()
	created, err := svc.CreateService(ctx, "u1", validRequest("Piano basics"))
	require.NoError(t, err)

	title := "Piano for beginners"
	_, err = svc.UpdateService(ctx, "u2", created.ID, models.UpdateServiceRequest{Title: &title})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	updated, err := svc.UpdateService(ctx, "u1", created.ID, models.UpdateServiceRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
}

func TestDeleteServiceBlockedByAcceptedSwap(t *testing.T) {
	svc, services, swaps := newService(models.User{ID: "u1"})
	ctx := context.Background()
	created, err := svc.CreateService(ctx, "u1", validRequest("Bike repair"))
	require.NoError(t, err)

	require.NoError(t, swaps.Create(ctx, &models.Swap{
		ID: "s1", ProposerID: "u2", RecipientID: "u1",
		OfferedServiceID: "other", RequestedServiceID: created.ID,
		Status: models.SwapAccepted,
	}))
	err = svc.DeleteService(ctx, "u1", created.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = services.GetByID(ctx, created.ID)
	assert.NoError(t, err)
}

func TestInactiveListingHiddenFromOthers(t *testing.T) {
	svc, _, _ := newService(models.User{ID: "u1"})
	ctx := context.Background()
	created, err := svc.CreateService(ctx, "u1", validRequest("Sourdough class"))
	require.NoError(t, err)
	off := false
	_, err = svc.UpdateService(ctx, "u1", created.ID, models.UpdateServiceRequest{Active: &off})
	require.NoError(t, err)

	_, err = svc.GetService(ctx, "u2", created.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = svc.GetService(ctx, "u1", created.ID)
	assert.NoError(t, err)

	list, total, err := svc.ListServices(ctx, "u2", models.ServiceFilter{OwnerID: "u1"}, models.Page{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)

	own, _, err := svc.ListServices(ctx, "u1", models.ServiceFilter{OwnerID: "u1"}, models.Page{})
	require.NoError(t, err)
	assert.Len(t, own, 1)
}

func TestUploadServiceImageLimit(t *testing.T) {
	svc, _, _ := newService(models.User{ID: "u1"})
	ctx := context.Background()
	created, err := svc.CreateService(ctx, "u1", validRequest("Portrait shoot"))
	require.NoError(t, err)

	for i := 0; i < MaxImages; i++ {
		got, err := svc.UploadServiceImage(ctx, "u1", created.ID, "/tmp/x.jpg")
		require.NoError(t, err)
		assert.Len(t, got.ImageURLs, i+1)
	}
	_, err = svc.UploadServiceImage(ctx, "u1", created.ID, "/tmp/x.jpg")
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
	assert.Equal(t, "services/"+created.ID, svc.Storage.(*fakeStorage).folders[0])
}

func TestDeleteServiceRemovesImages(t *testing.T) {
	svc, services, _ := newService(models.User{ID: "u1"})
	ctx := context.Background()
	created, err := svc.CreateService(ctx, "u1", validRequest("Portrait shoot"))
	require.NoError(t, err)
	withImage, err := svc.UploadServiceImage(ctx, "u1", created.ID, "/tmp/x.jpg")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteService(ctx, "u1", created.ID))
	_, err = services.GetByID(ctx, created.ID)
	assert.Error(t, err)
	assert.Equal(t, withImage.ImageURLs, svc.Storage.(*fakeStorage).deleted)

	other, err := svc.CreateService(ctx, "u1", validRequest("Logo design"))
	require.NoError(t, err)
	_, err = svc.UploadServiceImage(ctx, "u1", other.ID, "/tmp/y.jpg")
	require.NoError(t, err)
	require.NoError(t, svc.TakeDown(ctx, other.ID))
	assert.Len(t, svc.Storage.(*fakeStorage).deleted, 2)
}

func TestPurgeUserDeletesListings(t *testing.T) {
	svc, services, _ := newService(models.User{ID: "u1"}, models.User{ID: "u2"})
	ctx := context.Background()
	mine, err := svc.CreateService(ctx, "u1", validRequest("Garden design"))
	require.NoError(t, err)
	_, err = svc.UploadServiceImage(ctx, "u1", mine.ID, "/tmp/x.jpg")
	require.NoError(t, err)
	theirs, err := svc.CreateService(ctx, "u2", validRequest("Guitar lessons"))
	require.NoError(t, err)

	require.NoError(t, svc.PurgeUser(ctx, "u1"))
	_, err = services.GetByID(ctx, mine.ID)
	assert.Error(t, err)
	_, err = services.GetByID(ctx, theirs.ID)
	assert.NoError(t, err)
	assert.Len(t, svc.Storage.(*fakeStorage).deleted, 1)
}
