package controllers

import (
	"voucher-redemption-api/config"
	"voucher-redemption-api/services"
)

// Package-level service handles, wired once at startup. Controllers stay
// plain gin handler functions, matching the rest of the codebase.
var (
	settings   *config.Settings
	draftStore services.DraftStore

	notifier      *services.NotificationService
	voucherSvc    *services.VoucherService
	submissionSvc *services.SubmissionService
	statusSvc     *services.StatusService
	dedupSvc      *services.DedupService
	exportSvc     *services.ExportService
	addressSvc    *services.AddressService
)

// Init wires the controller package. Call after config.InitDB.
func Init(s *config.Settings, store services.DraftStore) {
	settings = s
	draftStore = store

	notifier = services.NewNotificationService(s)
	voucherSvc = services.NewVoucherService(config.DB)
	submissionSvc = services.NewSubmissionService(config.DB, voucherSvc, notifier)
	statusSvc = services.NewStatusService(config.DB, notifier)
	dedupSvc = services.NewDedupService(config.DB, notifier)
	exportSvc = services.NewExportService(config.DB, s)
	addressSvc = services.NewAddressService(s)
}
