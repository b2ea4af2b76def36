package services

import "github.com/SscSPs/holistic_money/internal/core/ports/repositories"

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Client      ClientSvcFacade
	User        UserSvcFacade
	Token       TokenSvcFacade
	Access      AccessPolicy
	Financial   FinancialSvc
	Comment     CommentSvc
	Sync        SyncSvc
	StoreHealth repositories.StoreHealth
}
