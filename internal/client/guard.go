package client

// View — экран клиента.
type View string

const (
	ViewHome  View = "home"
	ViewBooks View = "books"
	ViewAuth  View = "auth"
)

// Action — результат проверки доступа к экрану.
type Action int

const (
	// Placeholder — состояние ещё загружается, показываем заглушку.
	Placeholder Action = iota
	// Redirect — нужно перейти на Decision.Target.
	Redirect
	// Render — экран можно показать.
	Render
)

// Decision — решение guard для экрана.
type Decision struct {
	Action Action
	Target View
}

// Protected сообщает, требует ли экран входа.
func (v View) Protected() bool {
	return v != ViewAuth
}

// Guard вычисляется при каждой навигации.
// Экран входа для вошедшего пользователя перенаправляет на главную.
func Guard(state State, view View) Decision {
	if state == StateLoading {
		return Decision{Action: Placeholder}
	}

	authenticated := state == StateAuthenticated
	switch {
	case view == ViewAuth && authenticated:
		return Decision{Action: Redirect, Target: ViewHome}
	case view.Protected() && !authenticated:
		return Decision{Action: Redirect, Target: ViewAuth}
	}
	return Decision{Action: Render, Target: view}
}
