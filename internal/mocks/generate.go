package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Sink --dir ../domain/warehouse --output domain/warehouse --outpkg warehousemock --filename sink_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name DimensionReader --dir ../domain/warehouse --output domain/warehouse --outpkg warehousemock --filename dimension_reader_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Sink --dir ../domain/rejection --output domain/rejection --outpkg rejectionmock --filename sink_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Source --dir ../domain/feed --output domain/feed --outpkg feedmock --filename source_mock.go
