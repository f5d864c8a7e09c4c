package calculator

//go:generate mockgen -source=observer.go -destination=../mocks/history_saver_mock.go -package=mocks

import (
	"advanced-calculator/internal/config"

	"go.uber.org/zap"
)

// HistoryObserver is notified after every committed calculation.
type HistoryObserver interface {
	Update(calc *Calculation) error
}

// HistorySaver is what AutoSaveObserver needs from the engine.
type HistorySaver interface {
	Config() *config.Config
	SaveHistory() error
}

// LoggingObserver writes one info line per calculation.
type LoggingObserver struct {
	logger *zap.Logger
}

func NewLoggingObserver(logger *zap.Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) Update(calc *Calculation) error {
	if calc == nil {
		return ErrNilCalculation
	}

	o.logger.Info("calculation performed",
		zap.String("operation", calc.Operation),
		zap.String("operand1", calc.Operand1.String()),
		zap.String("operand2", calc.Operand2.String()),
		zap.String("result", calc.Result.String()),
	)
	return nil
}

// AutoSaveObserver saves history after each calculation when the saver's
// configuration has AutoSave set.
type AutoSaveObserver struct {
	saver  HistorySaver
	logger *zap.Logger
}

func NewAutoSaveObserver(saver HistorySaver, logger *zap.Logger) (*AutoSaveObserver, error) {
	if saver == nil {
		return nil, ErrNilSaver
	}
	return &AutoSaveObserver{saver: saver, logger: logger}, nil
}

func (o *AutoSaveObserver) Update(calc *Calculation) error {
	if calc == nil {
		return ErrNilCalculation
	}
	if !o.saver.Config().AutoSave {
		return nil
	}

	if err := o.saver.SaveHistory(); err != nil {
		return err
	}

	o.logger.Info("history auto-saved", zap.String("operation", calc.Operation))
	return nil
}
