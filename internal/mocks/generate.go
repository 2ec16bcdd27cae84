// Package mocks provides gomock-generated mocks of the session ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	storage := mocks.NewMockStorage(ctrl)
//	storage.EXPECT().Get(gomock.Any(), "token").Return("tok", true, nil)
package mocks

// Generate mocks for Storage and Navigator from internal/ports.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/ousseynou98/frontsurete-sub001/internal/ports Storage,Navigator
