//go:build wireinject

package textractor

import (
	"github.com/google/wire"
)

func BuildApp(args *Args) (*App, func(), error) {
	panic(wire.Build(
		ProvideConfig,
		ProvideLogger,
		ProvideCounter,
		ProvideGitHubClient,
		ProvideDigestWriter,
		ProvideDB,
		ProvideHistoryStore,
		wire.Struct(new(GeneratePipeline), "*"),
		wire.Struct(new(App), "*"),
	))
}
