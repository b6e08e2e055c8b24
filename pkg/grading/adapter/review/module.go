package review

import (
	"sort"

	"go.uber.org/fx"

	gormreview "github.com/gradeloop/gradeloop/pkg/grading/adapter/review/gorm"
	// Register the bundled review store dialectors.
	_ "github.com/gradeloop/gradeloop/pkg/grading/adapter/review/gorm/mysql"
	_ "github.com/gradeloop/gradeloop/pkg/grading/adapter/review/gorm/postgres"
	_ "github.com/gradeloop/gradeloop/pkg/grading/adapter/review/gorm/sqlite"
	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

// NewReviewSink selects the review sink from the configuration. Without a
// configured store the in-memory queue is used. A "default" entry wins when
// several stores are configured; otherwise the first name in sorted order is
// taken.
func NewReviewSink(cfg *config.Config) (port.ReviewSink, error) {
	stores := cfg.Gradeloop.ReviewStores
	if len(stores) == 0 {
		logger.Infof("Review sink: no store configured, using in-memory queue")
		return NewInMemoryQueue(), nil
	}

	name := "default"
	if _, ok := stores[name]; !ok {
		names := make([]string, 0, len(stores))
		for n := range stores {
			names = append(names, n)
		}
		sort.Strings(names)
		name = names[0]
	}

	storeCfg, err := gormreview.DecodeStoreConfig(stores[name])
	if err != nil {
		return nil, err
	}
	if storeCfg.Type == "" || storeCfg.Type == "memory" {
		logger.Infof("Review sink: store '%s' uses the in-memory queue", name)
		return NewInMemoryQueue(), nil
	}

	logger.Infof("Review sink: store '%s' (%s)", name, storeCfg.Type)
	return gormreview.NewQueue(storeCfg)
}

// Module provides the configured review sink.
var Module = fx.Options(
	fx.Provide(NewReviewSink),
)
