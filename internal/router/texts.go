package router

// Button labels. Numbered menu buttons are recognised by their keycap
// prefix, the others by exact text.
const (
	KeycapResults = "1️⃣"
	KeycapPricing = "2️⃣"
	KeycapConsult = "3️⃣"
	KeycapSupport = "4️⃣"

	LabelResults = KeycapResults + " Получить результаты"
	LabelPricing = KeycapPricing + " Посчитать стоимость"
	LabelConsult = KeycapConsult + " Онлайн-консультация"
	LabelSupport = KeycapSupport + " Техподдержка"

	LabelDoctor  = "👩‍⚕️ Врач"
	LabelAI      = "🧠 Эликс-ИИ"
	LabelAdmin   = "👩‍💼 Администратор"
	LabelBack    = "🔙 Назад"
	LabelConsent = "✅ Согласен"
)

// Replies.
const (
	TextStart          = "Привет! Я Эликс — умный бот-помощник Helix.\nГотов помочь с анализами и рекомендациями."
	TextConsentPrompt  = "Перед продолжением необходимо согласие на обработку ПДн."
	TextAskData        = "Введите ваши данные в формате:\nФИО, дата рождения, телефон"
	TextInvalidData    = "Не удалось разобрать данные. Нужно ровно три поля через запятую:\nФИО, дата рождения, телефон"
	TextSaveFailed     = "⚠️ Не удалось сохранить заявку. Попробуйте отправить данные ещё раз чуть позже."
	TextPricingPrompt  = "Напишите список анализов через запятую (например: ОАК, ТТГ, витамин D)"
	TextPricingMissing = "Не удалось найти анализы. Попробуйте точнее."
	TextConsultPrompt  = "Выберите способ консультации:"
	TextDoctorSent     = "Заявка на врача отправлена."
	TextAdminSent      = "Заявка администратору отправлена."
	TextAIPrompt       = "Задайте свой вопрос. Например:\n«Мне 32 и ТТГ 36 — это нормально?»"
	TextSupport        = "Что-то пошло не так?"
	TextBack           = "Возвращаю вас в главное меню 👇"
	TextInternalError  = "⚠️ Произошла ошибка. Попробуйте ещё раз чуть позже."

	TextAdminUsage    = "Использование: /status <номер> <new|in_progress|closed>"
	TextAdminNotFound = "Заявка не найдена."
	TextAdminNoItems  = "Заявок нет."
	TextAdminFailed   = "⚠️ Не удалось выполнить команду. Подробности в логах."
)

// Trigger vocabularies, matched as lower-case substrings.
var (
	pricingVocabulary = []string{"оак", "ттг", "анализ", "витамин"}
	medicalVocabulary = []string{"ттг", "что делать"}
)
