package registration_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"phishgraph/pkg/domain"
	"phishgraph/pkg/registration"
	mockregistration "phishgraph/pkg/registration/mock"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCache_OneLookupPerHost(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mockregistration.NewMockResolver(ctrl)
	rec := &domain.RegistrationRecord{Host: "example.com", DomainName: "example.com"}

	next.EXPECT().Lookup(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) (*domain.RegistrationRecord, error) {
			time.Sleep(20 * time.Millisecond)

			return rec, nil
		}).Times(1)

	cache := registration.NewCache(next)

	var wg sync.WaitGroup
	hosts := []string{"example.com", "EXAMPLE.com", "example.com:443"}
	for i := range 9 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := cache.Lookup(context.Background(), hosts[i%len(hosts)])
			require.NoError(t, err)
			require.Same(t, rec, got)
		}()
	}
	wg.Wait()
	require.Equal(t, 1, cache.Len())
}

func TestCache_KeepsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mockregistration.NewMockResolver(ctrl)
	boom := errors.New("whois down")

	next.EXPECT().Lookup(gomock.Any(), "a.com").Return(nil, boom).Times(1)
	next.EXPECT().Lookup(gomock.Any(), "b.com").Return(&domain.RegistrationRecord{}, nil).Times(1)

	cache := registration.NewCache(next)
	for range 2 {
		_, err := cache.Lookup(context.Background(), "a.com")
		require.ErrorIs(t, err, boom)
		_, err = cache.Lookup(context.Background(), "b.com")
		require.NoError(t, err)
	}
	require.Equal(t, 2, cache.Len())
}

func TestCache_DropsCanceledLookups(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mockregistration.NewMockResolver(ctrl)

	gomock.InOrder(
		next.EXPECT().Lookup(gomock.Any(), "a.com").Return(nil, context.Canceled),
		next.EXPECT().Lookup(gomock.Any(), "a.com").Return(&domain.RegistrationRecord{}, nil),
	)

	cache := registration.NewCache(next)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cache.Lookup(ctx, "a.com")
	require.Error(t, err)
	_, err = cache.Lookup(context.Background(), "a.com")
	require.NoError(t, err)
}

func TestCache_JoinedCallerRetriesWhenSharedLookupWasCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mockregistration.NewMockResolver(ctrl)
	rec := &domain.RegistrationRecord{Host: "a.com", DomainName: "a.com"}

	started := make(chan struct{})
	gomock.InOrder(
		next.EXPECT().Lookup(gomock.Any(), "a.com").
			DoAndReturn(func(ctx context.Context, _ string) (*domain.RegistrationRecord, error) {
				close(started)
				<-ctx.Done()

				return nil, ctx.Err()
			}),
		next.EXPECT().Lookup(gomock.Any(), "a.com").Return(rec, nil),
	)

	cache := registration.NewCache(next)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := cache.Lookup(ctx, "a.com")
		first <- err
	}()
	<-started

	var (
		wg  sync.WaitGroup
		got *domain.RegistrationRecord
		err error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		got, err = cache.Lookup(context.Background(), "a.com")
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	require.ErrorIs(t, <-first, context.Canceled)
	wg.Wait()
	require.NoError(t, err)
	require.Same(t, rec, got)
	require.Equal(t, 1, cache.Len())
}
