package assessment

import "go.uber.org/fx"

var Module = fx.Module("providers.assessment",
	fx.Provide(NewHTTPClient),
)
