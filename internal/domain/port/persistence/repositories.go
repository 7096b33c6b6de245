package persistence

// Repositories bundles one backend's implementations of every port
type Repositories struct {
	UnitOfWork   UnitOfWork
	Lockers      LockerRepository
	Transactions TransactionRepository
	LockerLogs   LockerLogRepository
	Payments     PaymentRepository
	Devices      DeviceRepository
	Users        UserRepository
}
