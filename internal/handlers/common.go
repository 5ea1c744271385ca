package handlers

import (
	"net/http"

	"github.com/senyabanana/tender-evaluation/internal/identity"
	"github.com/senyabanana/tender-evaluation/internal/models"
	"github.com/senyabanana/tender-evaluation/internal/services"
	"github.com/senyabanana/tender-evaluation/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// currentActor достает пользователя из контекста; без него отвечает 401.
func currentActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "missing "+identity.Header+" header")
	}
	return actor, ok
}

// weightOverride читает необязательные techWeight и commWeight.
func weightOverride(r *http.Request) (services.WeightOverride, error) {
	technical, err := utils.ParseDecimalParam(r, "techWeight")
	if err != nil {
		return services.WeightOverride{}, err
	}
	commercial, err := utils.ParseDecimalParam(r, "commWeight")
	if err != nil {
		return services.WeightOverride{}, err
	}
	return services.WeightOverride{Technical: technical, Commercial: commercial}, nil
}

func requestLogger(logger logrus.FieldLogger, funcName string, r *http.Request) logrus.FieldLogger {
	fields := logrus.Fields{"module": "handlers", "funcName": funcName}
	if tenderId := chi.URLParam(r, "tenderId"); tenderId != "" {
		fields["tenderId"] = tenderId
	}
	return logger.WithFields(fields)
}
