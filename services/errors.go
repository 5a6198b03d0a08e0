package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed   = errors.New("validation failed")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidDiscipline  = errors.New("discipline is not one of math, english, programming")
	ErrTournamentClosed   = errors.New("tournament is not open for registration")
	ErrTournamentFull     = errors.New("tournament registration is full")
	ErrParticipantRemoved = errors.New("participant has been removed from the tournament")
	ErrTitleRequired      = errors.New("tournament title is required")
	ErrTicketSubjectEmpty = errors.New("ticket subject is required")
	ErrAnswerEmpty        = errors.New("answer must not be empty")
	ErrScoreCasesNegative = errors.New("cases delta must not be negative")

	// Ошибки конфликтов
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrUserNicknameConflict = errors.New("nickname is already in use")
	ErrTournamentSlugTaken  = errors.New("tournament slug already exists")
	ErrTournamentInUse      = errors.New("tournament has participants and cannot be deleted")

	// Файловое хранилище не сконфигурировано: эндпоинты загрузки
	// логотипов и аватаров отвечают 503, а не падают.
	ErrUploadsDisabled = errors.New("file uploads are not configured")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound        = errors.New("user not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrParticipantNotFound = errors.New("participant registration not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrTicketNotFound      = errors.New("ticket not found")

	// Ошибки турниров
	ErrTournamentInvalidDateRange        = errors.New("tournament end date must be after start date")
	ErrTournamentInvalidCapacity         = errors.New("tournament max participants must not be negative")
	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")

	// Хранилище недоступно или запрос не уложился в таймаут.
	// Вызывающая сторона может повторить запрос, ядро само не ретраит.
	ErrTransientStore = errors.New("storage temporarily unavailable")
)
