package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/studyquest/internal/ai"
	"github.com/verte-zerg/studyquest/internal/content"
	"github.com/verte-zerg/studyquest/internal/history"
	"github.com/verte-zerg/studyquest/internal/model"
)

const (
	msgCorrect         = "Correct!"
	msgFeedbackError   = "Feedback processing error"
	msgNoMoreQuestions = "No more questions available right now."
)

// QuestionClient acquires questions and verdicts from the collaborator.
type QuestionClient interface {
	RequestNextQuestion(ctx context.Context, history []model.Turn, req ai.QuestionRequest) (ai.Exchange, error)
	SubmitAnswer(ctx context.Context, history []model.Turn, answer string) (ai.Exchange, error)
	ForgetQuestion(entityID int, topic string)
}

// Ledger records answered interactions for the results review.
type Ledger interface {
	RecordAnswer(ctx context.Context, rec model.AnswerRecord) error
	Reset(ctx context.Context) error
}

// Chrome hides ambient navigation while a session is active.
type Chrome interface {
	SetChromeVisible(visible bool)
}

// Options wires an Engine to its collaborators. Ledger and Chrome are optional.
type Options struct {
	Config    model.Config
	Catalog   *content.Catalog
	Client    QuestionClient
	Scheduler Scheduler
	Ledger    Ledger
	Chrome    Chrome
	Rand      *rand.Rand
	Now       func() time.Time
}

type questionMsg struct {
	interaction int
	exchange    ai.Exchange
	err         error
}

type verdictMsg struct {
	interaction int
	answer      string
	exchange    ai.Exchange
	err         error
}

type moveTickMsg struct {
	seq int
}

// Engine is the session state machine. All methods run on the Bubble Tea loop;
// asynchronous work is returned as tea.Cmd and its result comes back through Update.
type Engine struct {
	cfg     model.Config
	catalog *content.Catalog
	client  QuestionClient
	sched   Scheduler
	ledger  Ledger
	chrome  Chrome
	rnd     *rand.Rand
	now     func() time.Time

	session  model.Session
	quiz     content.Quiz
	history  *history.Log
	tracker  *Tracker
	timer    *FeedbackTimer
	world    *World
	question *model.Question
	answer   string
	factoid  string

	staticIndex int
	pending     bool
	exhausted   bool
	interaction int
	activeNPC   int
	moving      bool
	moveSeq     int
	answerSeq   int
}

// New returns an engine in the selection state.
func New(opts Options) *Engine {
	if opts.Scheduler == nil {
		opts.Scheduler = TeaScheduler()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		cfg:       opts.Config,
		catalog:   opts.Catalog,
		client:    opts.Client,
		sched:     opts.Scheduler,
		ledger:    opts.Ledger,
		chrome:    opts.Chrome,
		rnd:       opts.Rand,
		now:       opts.Now,
		session:   model.Session{State: model.StateSelection},
		history:   history.New(),
		tracker:   NewTracker(0),
		timer:     NewFeedbackTimer(opts.Scheduler, FeedbackSampleInterval),
		activeNPC: -1,
	}
}

// Update routes engine messages. Messages it does not own are ignored.
func (e *Engine) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case timerTickMsg:
		return e.timer.Update(msg)
	case moveTickMsg:
		return e.step(msg)
	case questionMsg:
		return e.handleQuestion(msg)
	case verdictMsg:
		return e.handleVerdict(msg)
	default:
		return nil
	}
}

// SelectQuiz picks a static quiz and shows its intro.
func (e *Engine) SelectQuiz(id string) tea.Cmd {
	if e.session.State != model.StateSelection || e.catalog == nil {
		return nil
	}
	quiz, ok := e.catalog.Find(id)
	if !ok || len(quiz.Questions) == 0 {
		return nil
	}
	e.quiz = quiz
	e.session = model.Session{Mode: model.ModeStatic, State: model.StateIntro, Topic: quiz.Category, QuizID: quiz.ID}
	return nil
}

// SelectAdaptive starts an AI quiz on topic.
func (e *Engine) SelectAdaptive(topic string) tea.Cmd {
	return e.selectAI(model.ModeAdaptive, topic)
}

// SelectExploration starts the exploration game on topic.
func (e *Engine) SelectExploration(topic string) tea.Cmd {
	return e.selectAI(model.ModeExploration, topic)
}

func (e *Engine) selectAI(mode model.Mode, topic string) tea.Cmd {
	if e.session.State != model.StateSelection || e.client == nil {
		return nil
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil
	}
	e.session = model.Session{Mode: mode, State: model.StateSelection, Topic: topic}
	return e.enterActive()
}

// Start confirms the static quiz intro.
func (e *Engine) Start() tea.Cmd {
	if e.session.State != model.StateIntro {
		return nil
	}
	return e.enterActive()
}

// Restart replays the current mode and topic with a fresh score and history.
func (e *Engine) Restart() tea.Cmd {
	if e.session.State != model.StateResults && e.session.State != model.StateActive {
		return nil
	}
	return e.enterActive()
}

// Cancel abandons the session and returns to selection.
func (e *Engine) Cancel() tea.Cmd {
	if e.session.State == model.StateSelection {
		return nil
	}
	e.teardown()
	e.resetLedger()
	e.quiz = content.Quiz{}
	e.world = nil
	e.tracker = NewTracker(0)
	e.setState(model.StateSelection)
	e.session = model.Session{State: model.StateSelection}
	return nil
}

// SetAnswer stores the pending answer for the current question.
func (e *Engine) SetAnswer(answer string) {
	if !e.awaitingAnswer() {
		return
	}
	e.answer = answer
}

// Submit judges the stored answer. Static answers are judged locally, others by the collaborator.
func (e *Engine) Submit() tea.Cmd {
	if !e.awaitingAnswer() {
		return nil
	}
	answer := strings.TrimSpace(e.answer)
	if answer == "" {
		return nil
	}
	if e.session.Mode == model.ModeStatic {
		q := *e.question
		correct := strings.EqualFold(answer, q.CorrectAnswer)
		message := msgCorrect
		polarity := model.PolarityCorrect
		if !correct {
			message = fmt.Sprintf("Incorrect. The answer is %s.", q.CorrectAnswer)
			polarity = model.PolarityIncorrect
		}
		e.tracker.RecordAnswer(correct)
		e.record(q, answer, correct, message)
		return e.feedback(message, polarity, e.cfg.FeedbackDuration)
	}
	e.pending = true
	id := e.interaction
	snapshot := e.history.Snapshot()
	client := e.client
	timeout := e.cfg.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := requestContext(timeout)
		defer cancel()
		ex, err := client.SubmitAnswer(ctx, snapshot, answer)
		return verdictMsg{interaction: id, answer: answer, exchange: ex, err: err}
	}
}

// Proceed closes the feedback window early.
func (e *Engine) Proceed() tea.Cmd {
	return e.timer.Finish()
}

// Press holds a movement direction in exploration mode.
func (e *Engine) Press(dir Direction) tea.Cmd {
	if e.world == nil || e.session.State != model.StateActive || dir == Still {
		return nil
	}
	e.world.Hold(dir)
	return e.startMoving()
}

// Release lets go of the held direction.
func (e *Engine) Release() {
	if e.world == nil {
		return
	}
	e.world.Release()
	e.stopMoving()
}

func (e *Engine) enterActive() tea.Cmd {
	e.teardown()
	e.resetLedger()
	e.exhausted = false
	e.staticIndex = 0
	e.answerSeq = 0
	e.world = nil
	e.session.StartedAt = e.now()

	switch e.session.Mode {
	case model.ModeStatic:
		target := len(e.quiz.Questions)
		if e.cfg.Questions > 0 && e.cfg.Questions < target {
			target = e.cfg.Questions
		}
		e.tracker = NewTracker(min(target, MaxQuestions))
		e.setState(model.StateActive)
		e.showStatic()
		return nil
	case model.ModeAdaptive:
		e.tracker = NewTracker(QuestionTarget(e.cfg.Questions))
		e.setState(model.StateActive)
		return e.requestQuestion(ai.QuestionRequest{Intent: ai.IntentStart, Topic: e.session.Topic})
	default:
		e.world = NewWorld(e.cfg.World, e.rnd)
		e.tracker = NewTracker(len(e.world.NPCs()))
		e.setState(model.StateActive)
		if e.tracker.IsComplete() {
			e.setState(model.StateResults)
		}
		return nil
	}
}

// teardown cancels every periodic task and discards in-flight results.
func (e *Engine) teardown() {
	e.timer.Cancel()
	e.stopMoving()
	e.interaction++
	e.pending = false
	e.history.Clear()
	e.question = nil
	e.answer = ""
	e.factoid = ""
	e.activeNPC = -1
}

func (e *Engine) setState(next model.State) {
	prev := e.session.State
	e.session.State = next
	if e.chrome == nil || prev == next {
		return
	}
	if next == model.StateActive {
		e.chrome.SetChromeVisible(false)
	} else if prev == model.StateActive {
		e.chrome.SetChromeVisible(true)
	}
}

func (e *Engine) showStatic() {
	q := e.quiz.Questions[e.staticIndex].ToModel(e.quiz.ID, e.quiz.Category)
	e.question = &q
	e.answer = ""
}

func (e *Engine) awaitingAnswer() bool {
	return e.session.State == model.StateActive && e.question != nil && !e.pending && !e.timer.Active()
}

// busy reports whether an interaction is in progress, which suppresses movement and proximity checks.
func (e *Engine) busy() bool {
	return e.pending || e.question != nil || e.timer.Active() || e.activeNPC >= 0
}

func (e *Engine) requestQuestion(req ai.QuestionRequest) tea.Cmd {
	if e.pending || e.client == nil {
		return nil
	}
	e.pending = true
	e.interaction++
	id := e.interaction
	snapshot := e.history.Snapshot()
	client := e.client
	timeout := e.cfg.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := requestContext(timeout)
		defer cancel()
		ex, err := client.RequestNextQuestion(ctx, snapshot, req)
		return questionMsg{interaction: id, exchange: ex, err: err}
	}
}

func (e *Engine) handleQuestion(msg questionMsg) tea.Cmd {
	if msg.interaction != e.interaction || !e.pending {
		return nil
	}
	e.pending = false
	if msg.err == nil && msg.exchange.Question != nil {
		e.history.RecordExchange(msg.exchange.Outgoing, msg.exchange.Incoming)
		q := *msg.exchange.Question
		e.question = &q
		e.answer = ""
		return nil
	}
	err := msg.err
	if err == nil {
		err = errors.New("empty question exchange")
	}
	log.Printf("question request failed: %v", err)
	if ai.IsSoft(err) && e.session.Mode == model.ModeAdaptive {
		e.exhausted = true
		return e.feedback(msgNoMoreQuestions, model.PolarityError, e.feedbackDuration())
	}
	message := fmt.Sprintf("Could not load a question: %v", err)
	if ai.IsSoft(err) {
		message = msgNoMoreQuestions
	}
	unavailable := model.Question{Prompt: "(question unavailable)"}
	e.tracker.RecordAnswer(false)
	e.record(unavailable, "", false, message)
	return e.feedback(message, model.PolarityError, e.feedbackDuration())
}

func (e *Engine) handleVerdict(msg verdictMsg) tea.Cmd {
	if msg.interaction != e.interaction || !e.pending || e.question == nil {
		return nil
	}
	e.pending = false
	q := *e.question
	if msg.err != nil || msg.exchange.Verdict == nil {
		err := msg.err
		if err == nil {
			err = errors.New("empty feedback exchange")
		}
		log.Printf("answer feedback failed: %v", err)
		message := msgFeedbackError
		if !ai.IsSoft(err) {
			message = fmt.Sprintf("Could not check your answer: %v", err)
		}
		e.tracker.RecordAnswer(false)
		e.record(q, msg.answer, false, message)
		return e.feedback(message, model.PolarityError, e.feedbackDuration())
	}
	e.history.RecordExchange(msg.exchange.Outgoing, msg.exchange.Incoming)
	verdict := *msg.exchange.Verdict
	if verdict.Tag != "" && q.Tag == "" {
		q.Tag = verdict.Tag
	}
	if verdict.Difficulty > 0 && q.Difficulty == 0 {
		q.Difficulty = verdict.Difficulty
	}
	polarity := model.PolarityIncorrect
	if verdict.Correct {
		polarity = model.PolarityCorrect
	}
	e.tracker.RecordAnswer(verdict.Correct)
	e.record(q, msg.answer, verdict.Correct, verdict.Explanation)
	e.factoid = verdict.Factoid
	if e.factoid == "" {
		e.factoid = q.Factoid
	}
	return e.feedback(verdict.Explanation, polarity, e.feedbackDuration())
}

func (e *Engine) feedback(message string, polarity model.Polarity, total time.Duration) tea.Cmd {
	return e.timer.Start(message, polarity, total, e.afterFeedback)
}

func (e *Engine) feedbackDuration() time.Duration {
	if e.session.Mode == model.ModeExploration {
		return e.cfg.GameFeedbackDuration
	}
	return e.cfg.FeedbackDuration
}

// afterFeedback runs when a feedback window closes and decides the next transition.
func (e *Engine) afterFeedback() tea.Cmd {
	e.question = nil
	e.answer = ""
	e.factoid = ""
	switch e.session.Mode {
	case model.ModeStatic:
		e.staticIndex++
		if e.tracker.IsComplete() || e.staticIndex >= len(e.quiz.Questions) {
			e.setState(model.StateResults)
			return nil
		}
		e.showStatic()
		return nil
	case model.ModeAdaptive:
		if e.tracker.IsComplete() || e.exhausted {
			e.setState(model.StateResults)
			return nil
		}
		return e.requestQuestion(ai.QuestionRequest{Intent: ai.IntentNext, Topic: e.session.Topic})
	default:
		if e.activeNPC >= 0 {
			e.world.Resolve(e.activeNPC)
			e.client.ForgetQuestion(e.activeNPC, e.session.Topic)
			e.activeNPC = -1
		}
		if e.world.AllAnswered() || e.tracker.IsComplete() {
			e.stopMoving()
			e.setState(model.StateResults)
			return nil
		}
		if e.world.Held() != Still {
			return e.startMoving()
		}
		return nil
	}
}

func (e *Engine) startMoving() tea.Cmd {
	if e.moving || e.busy() || e.world == nil || e.world.Held() == Still {
		return nil
	}
	e.moving = true
	e.moveSeq++
	return e.sched.After(e.cfg.TickInterval, moveTickMsg{seq: e.moveSeq})
}

func (e *Engine) stopMoving() {
	if !e.moving {
		return
	}
	e.moving = false
	e.moveSeq++
}

func (e *Engine) step(msg moveTickMsg) tea.Cmd {
	if !e.moving || msg.seq != e.moveSeq || e.world == nil || e.session.State != model.StateActive {
		return nil
	}
	if e.busy() || e.world.Held() == Still {
		e.stopMoving()
		return nil
	}
	e.world.Step()
	if npc, ok := e.world.Nearby(); ok {
		e.stopMoving()
		e.activeNPC = npc.ID
		intent := ai.IntentNext
		if e.history.Len() == 0 {
			intent = ai.IntentStart
		}
		return e.requestQuestion(ai.QuestionRequest{
			Intent:    intent,
			Topic:     e.session.Topic,
			EntityID:  npc.ID,
			Cacheable: true,
		})
	}
	return e.sched.After(e.cfg.TickInterval, moveTickMsg{seq: e.moveSeq})
}

func (e *Engine) record(q model.Question, answer string, correct bool, explanation string) {
	e.answerSeq++
	if e.ledger == nil {
		return
	}
	rec := model.AnswerRecord{
		Seq:         e.answerSeq,
		Mode:        e.session.Mode,
		Topic:       e.session.Topic,
		Question:    q.Prompt,
		Answer:      answer,
		Correct:     correct,
		Explanation: explanation,
		Tag:         q.Tag,
		Difficulty:  q.Difficulty,
		AnsweredAt:  e.now(),
	}
	if err := e.ledger.RecordAnswer(context.Background(), rec); err != nil {
		log.Printf("failed to record answer: %v", err)
	}
}

func (e *Engine) resetLedger() {
	if e.ledger == nil {
		return
	}
	if err := e.ledger.Reset(context.Background()); err != nil {
		log.Printf("failed to reset answers: %v", err)
	}
}

func requestContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}
