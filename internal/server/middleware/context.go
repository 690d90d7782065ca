package middleware

import (
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"
)

// App bundles the shared clients every handler needs.
type App struct {
	DBConn  *pgxpool.Pool
	Queue   *amqp091.Channel
	S3      *s3.Client
	APIKeys map[string]string
}

// AppContext wraps the request context with the app clients and the
// authenticated client name.
type AppContext struct {
	echo.Context
	App    *App
	Client string
}

func AppContextMiddleware(
	conn *pgxpool.Pool,
	queue *amqp091.Channel,
	s3Client *s3.Client,
	apiKeys map[string]string,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			app := &App{
				DBConn:  conn,
				Queue:   queue,
				S3:      s3Client,
				APIKeys: apiKeys,
			}
			cc := &AppContext{c, app, ""}
			return next(cc)
		}
	}
}
