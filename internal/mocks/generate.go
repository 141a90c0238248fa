package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/state --output domain/state --outpkg statemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name HistoryRepository --dir ../domain/state --output domain/state --outpkg statemock --filename history_repository_mock.go
