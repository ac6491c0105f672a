package mock_libcvss

//go:generate -command mockgen go run go.uber.org/mock/mockgen -package=$GOPACKAGE -destination=./mocks.go github.com/quay/cvsscalc/libcvss
//go:generate mockgen Scorer
