// Package mocks provides gomock implementations of the repository and port interfaces.
//
// Regenerate after interface changes with:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	roles := mocks.NewMockRoleDirectory(ctrl)
//	roles.EXPECT().RoleFor(gomock.Any(), gomock.Any()).Return(auth.RoleAdmin, nil)
package mocks

// Repository contracts from internal/core.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=core_repository_mock.go github.com/thankyoudoc/thankyoudoc-api/internal/core DoctorRepository,AppointmentRepository,AppointmentSweepRepository,RoleRepository

// Collaborator ports consumed by the access gate, auth flows and HTTP layer.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/thankyoudoc/thankyoudoc-api/internal/ports IdentityResolver,RoleDirectory,RoleAssigner,OverrideStore,Navigator,DecisionRecorder,AuthProvider,TokenVerifier,SessionStore
