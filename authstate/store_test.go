package authstate_test

import (
	"context"
	"testing"

	"github.com/accesswash/portal"
	"github.com/accesswash/portal/authstate"
	"github.com/accesswash/portal/customers"
	"github.com/stretchr/testify/require"
)

var testCustomer = customers.Customer{
	ID:        "cust-1",
	Email:     "jane@example.com",
	FirstName: "Jane",
	LastName:  "Wanjiku",
}

// fakeAPI stubs the portal client with per-method functions.
type fakeAPI struct {
	loginFn          func(ctx context.Context, creds portal.Credentials) (*customers.Customer, error)
	registerFn       func(ctx context.Context, data portal.Registration) (*customers.Customer, error)
	logoutFn         func(ctx context.Context) error
	forgotPasswordFn func(ctx context.Context, email string) error
	currentFn        func() *customers.Customer
	authenticatedFn  func() bool
}

func (f *fakeAPI) Login(ctx context.Context, creds portal.Credentials) (*customers.Customer, error) {
	return f.loginFn(ctx, creds)
}

func (f *fakeAPI) Register(ctx context.Context, data portal.Registration) (*customers.Customer, error) {
	return f.registerFn(ctx, data)
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	return f.logoutFn(ctx)
}

func (f *fakeAPI) ForgotPassword(ctx context.Context, email string) error {
	return f.forgotPasswordFn(ctx, email)
}

func (f *fakeAPI) CurrentCustomer() *customers.Customer {
	if f.currentFn == nil {
		return nil
	}
	return f.currentFn()
}

func (f *fakeAPI) IsAuthenticated() bool {
	if f.authenticatedFn == nil {
		return false
	}
	return f.authenticatedFn()
}

func factoryFor(api authstate.API) authstate.ClientFactory {
	return func(tenantID string) authstate.API { return api }
}

func TestNewRequiresClientFactory(t *testing.T) {
	_, err := authstate.New(nil)
	require.Error(t, err)
}

func TestInitialStateIsIdle(t *testing.T) {
	store, err := authstate.New(factoryFor(&fakeAPI{}))
	require.NoError(t, err)

	state := store.Snapshot()
	require.Equal(t, authstate.StatusIdle, state.Status)
	require.False(t, state.IsAuthenticated())
}

func TestLoginSuccess(t *testing.T) {
	api := &fakeAPI{
		loginFn: func(ctx context.Context, creds portal.Credentials) (*customers.Customer, error) {
			require.Equal(t, "jane@example.com", creds.Email)
			customer := testCustomer
			return &customer, nil
		},
	}

	store, err := authstate.New(factoryFor(api))
	require.NoError(t, err)

	require.NoError(t, store.Login(context.Background(), "acme", portal.Credentials{
		Email:    "jane@example.com",
		Password: "secret123",
	}))

	state := store.Snapshot()
	require.Equal(t, "acme", state.Tenant)
	require.Equal(t, authstate.StatusAuthenticated, state.Status)
	require.True(t, state.IsAuthenticated())
	require.Equal(t, testCustomer, *state.Customer)
	require.Empty(t, state.Err)
}

func TestLoginFailureRetainsError(t *testing.T) {
	api := &fakeAPI{
		loginFn: func(ctx context.Context, creds portal.Credentials) (*customers.Customer, error) {
			return nil, &portal.Error{Message: "Invalid email or password", StatusCode: 400}
		},
	}

	store, err := authstate.New(factoryFor(api))
	require.NoError(t, err)

	err = store.Login(context.Background(), "acme", portal.Credentials{Email: "jane@example.com", Password: "wrong"})
	require.Error(t, err)

	state := store.Snapshot()
	require.Equal(t, authstate.StatusUnauthenticated, state.Status)
	require.Equal(t, "Invalid email or password", state.Err)
	require.Nil(t, state.Customer)

	// The message stays until explicitly cleared.
	require.Equal(t, "Invalid email or password", store.Snapshot().Err)
	store.ClearError()
	require.Empty(t, store.Snapshot().Err)
	require.Equal(t, authstate.StatusUnauthenticated, store.Snapshot().Status)
}

func TestRegisterSuccess(t *testing.T) {
	api := &fakeAPI{
		registerFn: func(ctx context.Context, data portal.Registration) (*customers.Customer, error) {
			customer := testCustomer
			return &customer, nil
		},
	}

	store, err := authstate.New(factoryFor(api))
	require.NoError(t, err)

	require.NoError(t, store.Register(context.Background(), "acme", portal.Registration{
		Email:    "jane@example.com",
		Password: "secret123",
	}))
	require.True(t, store.Snapshot().IsAuthenticated())
}

func TestLogoutAlwaysEndsUnauthenticated(t *testing.T) {
	loginAPI := &fakeAPI{
		loginFn: func(ctx context.Context, creds portal.Credentials) (*customers.Customer, error) {
			customer := testCustomer
			return &customer, nil
		},
		logoutFn: func(ctx context.Context) error {
			return &portal.Error{Message: "boom", StatusCode: 500}
		},
	}

	store, err := authstate.New(factoryFor(loginAPI))
	require.NoError(t, err)

	require.NoError(t, store.Login(context.Background(), "acme", portal.Credentials{}))
	require.True(t, store.Snapshot().IsAuthenticated())

	// Remote failure never surfaces; local state still resets.
	store.Logout(context.Background(), "acme")

	state := store.Snapshot()
	require.Equal(t, authstate.StatusUnauthenticated, state.Status)
	require.Nil(t, state.Customer)
	require.Empty(t, state.Err)

	// A second logout with nothing to clear behaves identically.
	store.Logout(context.Background(), "acme")
	state = store.Snapshot()
	require.Equal(t, authstate.StatusUnauthenticated, state.Status)
	require.Empty(t, state.Err)
}

func TestLoadFromStorageAuthenticated(t *testing.T) {
	api := &fakeAPI{
		currentFn: func() *customers.Customer {
			customer := testCustomer
			return &customer
		},
		authenticatedFn: func() bool { return true },
	}

	store, err := authstate.New(factoryFor(api))
	require.NoError(t, err)

	state := store.LoadFromStorage("acme")
	require.Equal(t, "acme", state.Tenant)
	require.Equal(t, authstate.StatusAuthenticated, state.Status)
	require.Equal(t, testCustomer, *state.Customer)
}

func TestLoadFromStorageUnauthenticated(t *testing.T) {
	store, err := authstate.New(factoryFor(&fakeAPI{}))
	require.NoError(t, err)

	state := store.LoadFromStorage("acme")
	require.Equal(t, authstate.StatusUnauthenticated, state.Status)
	require.Nil(t, state.Customer)
	require.Empty(t, state.Err)
}

func TestTenantSwitchWipesState(t *testing.T) {
	api := &fakeAPI{
		loginFn: func(ctx context.Context, creds portal.Credentials) (*customers.Customer, error) {
			customer := testCustomer
			return &customer, nil
		},
		forgotPasswordFn: func(ctx context.Context, email string) error { return nil },
	}

	store, err := authstate.New(factoryFor(api))
	require.NoError(t, err)

	require.NoError(t, store.Login(context.Background(), "acme", portal.Credentials{}))
	require.True(t, store.Snapshot().IsAuthenticated())

	// An action for a different tenant must not inherit acme's customer.
	require.NoError(t, store.ForgotPassword(context.Background(), "utility1", "jane@example.com"))

	state := store.Snapshot()
	require.Equal(t, "utility1", state.Tenant)
	require.Equal(t, authstate.StatusUnauthenticated, state.Status)
	require.Nil(t, state.Customer)
}

func TestForgotPasswordPreservesAuthenticatedCustomer(t *testing.T) {
	api := &fakeAPI{
		loginFn: func(ctx context.Context, creds portal.Credentials) (*customers.Customer, error) {
			customer := testCustomer
			return &customer, nil
		},
		forgotPasswordFn: func(ctx context.Context, email string) error { return nil },
	}

	store, err := authstate.New(factoryFor(api))
	require.NoError(t, err)

	require.NoError(t, store.Login(context.Background(), "acme", portal.Credentials{}))
	require.NoError(t, store.ForgotPassword(context.Background(), "acme", "jane@example.com"))

	state := store.Snapshot()
	require.Equal(t, authstate.StatusAuthenticated, state.Status)
	require.Equal(t, testCustomer, *state.Customer)
}

func TestForgotPasswordFailureRetainsError(t *testing.T) {
	api := &fakeAPI{
		forgotPasswordFn: func(ctx context.Context, email string) error {
			return &portal.Error{Message: "No account with that email", StatusCode: 404}
		},
	}

	store, err := authstate.New(factoryFor(api))
	require.NoError(t, err)

	err = store.ForgotPassword(context.Background(), "acme", "unknown@example.com")
	require.Error(t, err)

	state := store.Snapshot()
	require.Equal(t, authstate.StatusUnauthenticated, state.Status)
	require.Equal(t, "No account with that email", state.Err)
}

func TestResetReturnsToIdle(t *testing.T) {
	api := &fakeAPI{
		loginFn: func(ctx context.Context, creds portal.Credentials) (*customers.Customer, error) {
			customer := testCustomer
			return &customer, nil
		},
	}

	store, err := authstate.New(factoryFor(api))
	require.NoError(t, err)

	require.NoError(t, store.Login(context.Background(), "acme", portal.Credentials{}))
	store.Reset()

	state := store.Snapshot()
	require.Equal(t, authstate.StatusIdle, state.Status)
	require.Empty(t, state.Tenant)
	require.Nil(t, state.Customer)
}
