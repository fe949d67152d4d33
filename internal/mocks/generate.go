package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/transfer --output domain/transfer --outpkg transfermock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name ClubRepository --dir ../domain/transfer --output domain/transfer --outpkg transfermock --filename club_repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/matchlog --output domain/matchlog --outpkg matchlogmock --filename repository_mock.go
