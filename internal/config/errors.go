package config

import (
	"fmt"
	"time"

	"github.com/kashev/singularity-pipeline/internal/perr"
)

func errNegativeTimeout(d time.Duration) error {
	return perr.BadRequestWithMessage(fmt.Sprintf("step timeout must not be negative, got %s", d))
}
